package notify

import (
	"context"
	"fmt"

	"github.com/ekosolar/lead-pipeline/internal/domain"
	"github.com/ekosolar/lead-pipeline/internal/email"
	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
)

// CustomerEmailSender sends the confirmation to the lead. Scoring and
// other internal detail never appear in this message.
type CustomerEmailSender struct {
	transport    email.Transport
	renderer     *Renderer
	companyName  string
	companyPhone string
}

// NewCustomerEmailSender creates the customer confirmation channel.
func NewCustomerEmailSender(transport email.Transport, renderer *Renderer, companyName, companyPhone string) *CustomerEmailSender {
	if companyName == "" {
		companyName = "EkoSolar"
	}
	return &CustomerEmailSender{
		transport:    transport,
		renderer:     renderer,
		companyName:  companyName,
		companyPhone: companyPhone,
	}
}

func (s *CustomerEmailSender) Channel() string { return domain.ChannelCustomerEmail }

// Send delivers the confirmation. Leads without an email address are
// skipped with an error so the outcome record says why.
func (s *CustomerEmailSender) Send(ctx context.Context, p Payload) (string, error) {
	if p.Lead.Email == "" {
		return "", fmt.Errorf("lead has no email address")
	}

	html, err := s.renderer.Render(customerEmailTemplate, map[string]interface{}{
		"first_name":            firstName(p.Lead.Name),
		"company_name":          s.companyName,
		"company_phone":         s.companyPhone,
		"company_phone_display": s.companyPhone,
	})
	if err != nil {
		return "", fmt.Errorf("rendering confirmation: %w", err)
	}

	msg := email.Message{
		To:      p.Lead.Email,
		Subject: fmt.Sprintf("We received your solar inquiry — %s", s.companyName),
		HTML:    html,
	}
	if _, err := s.transport.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("sending confirmation: %w", err)
	}

	logger.Info("customer confirmation sent", "lead_id", p.Lead.ID, "email", p.Lead.Email)
	return s.transport.Name(), nil
}
