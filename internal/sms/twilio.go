package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ekosolar/lead-pipeline/internal/pkg/httpretry"
)

const defaultTwilioBaseURL = "https://api.twilio.com"

// TwilioProvider sends SMS through the Twilio Messages API. Configured
// as the secondary provider in the chain.
type TwilioProvider struct {
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	httpClient httpretry.HTTPDoer
}

// NewTwilioProvider creates a Twilio provider using account-SID/token
// basic auth.
func NewTwilioProvider(accountSID, authToken, fromNumber string, timeout time.Duration) *TwilioProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TwilioProvider{
		baseURL:    defaultTwilioBaseURL,
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: httpretry.NewRetryClient(&http.Client{Timeout: timeout}, 2),
	}
}

// Name implements Provider.
func (p *TwilioProvider) Name() string { return "twilio" }

type twilioResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// Send implements Provider.
func (p *TwilioProvider) Send(ctx context.Context, to, text string) (*SendResult, error) {
	form := url.Values{}
	form.Set("To", e164(to))
	form.Set("From", p.fromNumber)
	form.Set("Body", text)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.baseURL, p.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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
		return nil, fmt.Errorf("twilio API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed twilioResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &SendResult{
		Provider:  p.Name(),
		MessageID: parsed.SID,
		Status:    parsed.Status,
	}, nil
}
