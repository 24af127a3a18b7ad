package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ekosolar/lead-pipeline/internal/pkg/httpretry"
)

const defaultTelnyxBaseURL = "https://api.telnyx.com"

// TelnyxProvider sends SMS through the Telnyx Messages API. It is the
// primary provider in the chain: better T-Mobile delivery than the
// alternatives in practice.
type TelnyxProvider struct {
	baseURL          string
	apiKey           string
	fromNumber       string
	messagingProfile string
	httpClient       httpretry.HTTPDoer
}

// NewTelnyxProvider creates a Telnyx provider. messagingProfile is
// optional.
func NewTelnyxProvider(apiKey, fromNumber, messagingProfile string, timeout time.Duration) *TelnyxProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TelnyxProvider{
		baseURL:          defaultTelnyxBaseURL,
		apiKey:           apiKey,
		fromNumber:       fromNumber,
		messagingProfile: messagingProfile,
		httpClient:       httpretry.NewRetryClient(&http.Client{Timeout: timeout}, 2),
	}
}

// Name implements Provider.
func (p *TelnyxProvider) Name() string { return "telnyx" }

type telnyxRequest struct {
	From               string `json:"from"`
	To                 string `json:"to"`
	Text               string `json:"text"`
	MessagingProfileID string `json:"messaging_profile_id,omitempty"`
}

type telnyxResponse struct {
	Data struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		To   []struct {
			Status string `json:"status"`
		} `json:"to"`
	} `json:"data"`
}

// Send implements Provider.
func (p *TelnyxProvider) Send(ctx context.Context, to, text string) (*SendResult, error) {
	payload, err := json.Marshal(telnyxRequest{
		From:               p.fromNumber,
		To:                 e164(to),
		Text:               text,
		MessagingProfileID: p.messagingProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("telnyx API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed telnyxResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	status := "queued"
	if len(parsed.Data.To) > 0 && parsed.Data.To[0].Status != "" {
		status = parsed.Data.To[0].Status
	}

	return &SendResult{
		Provider:  p.Name(),
		MessageID: parsed.Data.ID,
		Status:    status,
	}, nil
}
