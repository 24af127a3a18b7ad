// Package notify builds and sends the per-channel lead notifications:
// the internal admin alert, the customer confirmation, the operator
// SMS, and the optional mobile push. Senders never raise transport
// failures to the caller as panics or partial state; they return an
// error and the orchestrator records the outcome.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ekosolar/lead-pipeline/internal/domain"
)

// Payload is everything a channel needs to render its notification.
// Engagement is nil for first-time submitters.
type Payload struct {
	Lead       domain.Lead
	Score      domain.LeadScore
	Engagement *domain.EngagementSummary
}

// ChannelSender delivers one notification channel. Channel returns the
// stable channel name used in outcome records; Send returns the
// provider that accepted the message.
type ChannelSender interface {
	Channel() string
	Send(ctx context.Context, p Payload) (provider string, err error)
}

// firstName extracts the leading name token for greetings.
func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// adminSubject builds the alert subject line: priority tag, category,
// name, and the total score.
func adminSubject(lead domain.Lead, score domain.LeadScore) string {
	return fmt.Sprintf("[%s] %s: %s (%d pts)", score.Priority, score.Category, lead.Name, score.Total)
}
