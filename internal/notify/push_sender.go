package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekosolar/lead-pipeline/internal/domain"
	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
	"github.com/ekosolar/lead-pipeline/internal/push"
)

// ErrSkipped marks a channel that was not attempted because it has
// nothing to deliver to. The orchestrator records it without treating
// the dispatch as degraded.
var ErrSkipped = errors.New("channel skipped")

// DeviceTokenSource lists the registered admin device tokens.
type DeviceTokenSource interface {
	Tokens(ctx context.Context) ([]string, error)
}

// PushSender notifies admin devices through Firebase Cloud Messaging.
// The channel is best-effort: no registered devices means skipped, and
// one stale token does not fail the rest.
type PushSender struct {
	client *push.FCMClient
	tokens DeviceTokenSource
}

// NewPushSender creates the push channel.
func NewPushSender(client *push.FCMClient, tokens DeviceTokenSource) *PushSender {
	return &PushSender{client: client, tokens: tokens}
}

func (s *PushSender) Channel() string { return domain.ChannelPush }

// Send pushes the lead alert to every registered device.
func (s *PushSender) Send(ctx context.Context, p Payload) (string, error) {
	tokens, err := s.tokens.Tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("listing device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return "", fmt.Errorf("%w: no devices registered", ErrSkipped)
	}

	title := fmt.Sprintf("%s Lead: %s", p.Score.Priority, p.Lead.Name)
	body := fmt.Sprintf("%d pts — %s", p.Score.Total, p.Score.Category)
	data := map[string]string{
		"lead_id":  p.Lead.ID,
		"priority": string(p.Score.Priority),
	}

	delivered := 0
	var lastErr error
	for _, token := range tokens {
		if _, err := s.client.Send(ctx, token, title, body, data); err != nil {
			lastErr = err
			logger.Warn("push delivery failed", "lead_id", p.Lead.ID, "error", err.Error())
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return "", fmt.Errorf("push failed for all %d devices: %w", len(tokens), lastErr)
	}

	logger.Info("push sent", "lead_id", p.Lead.ID, "devices", delivered)
	return "fcm", nil
}
