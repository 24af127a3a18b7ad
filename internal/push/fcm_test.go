package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type staticTokenSource struct{ tok *oauth2.Token }

func (s staticTokenSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestFCMClientSend(t *testing.T) {
	var gotAuth string
	var gotBody fcmMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/projects/ekosolar-site/messages:send", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"projects/ekosolar-site/messages/m-1"}`))
	}))
	defer srv.Close()

	c := &FCMClient{
		baseURL:     srv.URL,
		projectID:   "ekosolar-site",
		tokenSource: staticTokenSource{&oauth2.Token{AccessToken: "tok-1", TokenType: "Bearer"}},
		httpClient:  srv.Client(),
	}

	name, err := c.Send(context.Background(), "device-token-1", "New Lead", "Jane P.", map[string]string{"lead_id": "abc"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "device-token-1", gotBody.Message.Token)
	assert.Equal(t, "New Lead", gotBody.Message.Notification["title"])
	assert.Equal(t, "abc", gotBody.Message.Data["lead_id"])
	assert.Equal(t, "projects/ekosolar-site/messages/m-1", name)
}

func TestFCMClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"UNREGISTERED"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := &FCMClient{
		baseURL:     srv.URL,
		projectID:   "p",
		tokenSource: staticTokenSource{&oauth2.Token{AccessToken: "tok"}},
		httpClient:  srv.Client(),
	}

	_, err := c.Send(context.Background(), "stale-token", "t", "b", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestNewFCMClientRejectsBadCredentials(t *testing.T) {
	_, err := NewFCMClient("p", []byte("not json"), 0)
	assert.Error(t, err)

	_, err = NewFCMClient("", nil, 0)
	assert.Error(t, err)
}
