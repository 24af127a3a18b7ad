// Package sms delivers short notifications to the operator's phone
// through an ordered chain of providers. Two fallback layers exist and
// they are deliberately distinct strategies:
//
//   - The chain tries providers in priority order and STOPS at the
//     first success (direct carrier APIs are reliable when they work).
//   - The email-to-SMS gateway provider broadcasts to EVERY known
//     carrier gateway and never stops early, because the recipient's
//     carrier is unknown and a duplicate text beats silence.
//
// Keep them separate; merging them into one generic retry loop would
// silently change delivery semantics.
package sms

import (
	"context"
	"strings"
)

// SendResult describes one provider's delivery attempt.
type SendResult struct {
	Provider  string `json:"provider"`
	MessageID string `json:"message_id,omitempty"`
	Status    string `json:"status,omitempty"`

	// Gateway broadcast counters; zero for direct API providers.
	GatewaysAttempted int `json:"gateways_attempted,omitempty"`
	GatewaysSucceeded int `json:"gateways_succeeded,omitempty"`
}

// Provider is a single SMS transport. Implementations return an error
// when the message was not accepted; the chain decides what happens
// next.
type Provider interface {
	Name() string
	Send(ctx context.Context, to, text string) (*SendResult, error)
}

// isRateLimitError recognizes provider responses that indicate
// throttling so the caller can back off longer before the next attempt.
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "too many requests") || strings.Contains(msg, "status 429") || strings.Contains(msg, "rate limit")
}

// normalizePhone strips formatting characters, leaving digits only.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// e164 ensures a US number carries the +1 prefix expected by the
// direct-API providers.
func e164(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+1" + normalizePhone(phone)
}
