package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ekosolar/lead-pipeline/internal/domain"
	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
	"github.com/ekosolar/lead-pipeline/internal/sms"
)

// SMSSender texts the operator a short lead summary through the
// provider fallback chain.
type SMSSender struct {
	chain *sms.FallbackChain
	to    string
}

// NewSMSSender creates the SMS channel targeting the operator's number.
func NewSMSSender(chain *sms.FallbackChain, to string) *SMSSender {
	return &SMSSender{chain: chain, to: to}
}

func (s *SMSSender) Channel() string { return domain.ChannelSMS }

// Send delivers the summary. The body is built inside the single-SMS
// length limit; the chain handles provider fallback.
func (s *SMSSender) Send(ctx context.Context, p Payload) (string, error) {
	if s.to == "" {
		return "", fmt.Errorf("no operator SMS number configured")
	}

	result, err := s.chain.Send(ctx, s.to, smsBody(p.Lead, p.Score))
	if err != nil {
		return "", err
	}

	logger.Info("operator SMS sent",
		"lead_id", p.Lead.ID,
		"provider", result.Provider,
		"sms_to", s.to)
	return result.Provider, nil
}

// smsBody renders the operator text: who, how to reach them, and how
// hot the lead is. Truncated to a single SMS.
func smsBody(lead domain.Lead, score domain.LeadScore) string {
	var b strings.Builder
	b.WriteString("NEW SOLAR LEAD\n")
	b.WriteString("Name: " + lead.Name + "\n")
	b.WriteString("Phone: " + lead.Phone + "\n")
	if lead.HasBill() {
		fmt.Fprintf(&b, "Bill: $%.0f/mo\n", lead.ElectricBill)
	}
	fmt.Fprintf(&b, "Priority: %s (%d pts)", score.Priority, score.Total)
	return sms.TruncateSMS(b.String())
}
