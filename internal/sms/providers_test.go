package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelnyxProviderSend(t *testing.T) {
	var gotAuth string
	var gotBody telnyxRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/messages", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"tx-123","type":"message","to":[{"status":"queued"}]}}`))
	}))
	defer srv.Close()

	p := NewTelnyxProvider("key-abc", "+14045550000", "profile-1", time.Second)
	p.baseURL = srv.URL

	result, err := p.Send(context.Background(), "4045551234", "hello")
	require.NoError(t, err)

	assert.Equal(t, "Bearer key-abc", gotAuth)
	assert.Equal(t, "+14045551234", gotBody.To, "bare numbers get the +1 prefix")
	assert.Equal(t, "+14045550000", gotBody.From)
	assert.Equal(t, "profile-1", gotBody.MessagingProfileID)
	assert.Equal(t, "telnyx", result.Provider)
	assert.Equal(t, "tx-123", result.MessageID)
	assert.Equal(t, "queued", result.Status)
}

func TestTelnyxProviderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"detail":"invalid number"}]}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	p := NewTelnyxProvider("key", "+14045550000", "", time.Second)
	p.baseURL = srv.URL

	_, err := p.Send(context.Background(), "bogus", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
}

func TestTwilioProviderSend(t *testing.T) {
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token-xyz", pass)

		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"To":   r.PostForm.Get("To"),
			"From": r.PostForm.Get("From"),
			"Body": r.PostForm.Get("Body"),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM456","status":"queued"}`))
	}))
	defer srv.Close()

	p := NewTwilioProvider("AC123", "token-xyz", "+14045550000", time.Second)
	p.baseURL = srv.URL

	result, err := p.Send(context.Background(), "+14045551234", "lead alert")
	require.NoError(t, err)

	assert.Equal(t, "+14045551234", gotForm["To"])
	assert.Equal(t, "+14045550000", gotForm["From"])
	assert.Equal(t, "lead alert", gotForm["Body"])
	assert.Equal(t, "twilio", result.Provider)
	assert.Equal(t, "SM456", result.MessageID)
}

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, isRateLimitError(assertErr("telnyx API error (status 429): slow down")))
	assert.True(t, isRateLimitError(assertErr("Too many requests")))
	assert.False(t, isRateLimitError(assertErr("connection refused")))
	assert.False(t, isRateLimitError(nil))
}

func TestE164(t *testing.T) {
	assert.Equal(t, "+14045551234", e164("4045551234"))
	assert.Equal(t, "+14045551234", e164("(404) 555-1234"))
	assert.Equal(t, "+14045551234", e164("+14045551234"))
}

type strErr string

func (e strErr) Error() string { return string(e) }

func assertErr(s string) error { return strErr(s) }
