// Package push delivers admin push notifications through Firebase
// Cloud Messaging. The push channel is optional: when no device token
// or service-account credentials are configured the channel is skipped,
// not failed.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ekosolar/lead-pipeline/internal/pkg/httpretry"
)

const (
	defaultFCMBaseURL = "https://fcm.googleapis.com"
	fcmScope          = "https://www.googleapis.com/auth/firebase.messaging"
)

// FCMClient sends notifications through the FCM v1 API using a Google
// service account for authentication.
type FCMClient struct {
	baseURL     string
	projectID   string
	tokenSource oauth2.TokenSource
	httpClient  httpretry.HTTPDoer
}

// NewFCMClient creates a client from service-account JSON credentials.
func NewFCMClient(projectID string, serviceAccountJSON []byte, timeout time.Duration) (*FCMClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FCM project ID is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conf, err := google.JWTConfigFromJSON(serviceAccountJSON, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}

	return &FCMClient{
		baseURL:     defaultFCMBaseURL,
		projectID:   projectID,
		tokenSource: conf.TokenSource(context.Background()),
		httpClient:  httpretry.NewRetryClient(&http.Client{Timeout: timeout}, 2),
	}, nil
}

type fcmMessage struct {
	Message struct {
		Token        string            `json:"token"`
		Notification map[string]string `json:"notification"`
		Data         map[string]string `json:"data,omitempty"`
	} `json:"message"`
}

type fcmResponse struct {
	Name string `json:"name"`
}

// Send delivers one notification to the given device token and returns
// the FCM message name.
func (c *FCMClient) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) (string, error) {
	var msg fcmMessage
	msg.Message.Token = deviceToken
	msg.Message.Notification = map[string]string{"title": title, "body": body}
	msg.Message.Data = data

	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	tok, err := c.tokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("obtaining FCM token: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/projects/%s/messages:send", c.baseURL, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("FCM API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed fcmResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return parsed.Name, nil
}
