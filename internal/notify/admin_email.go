package notify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ekosolar/lead-pipeline/internal/domain"
	"github.com/ekosolar/lead-pipeline/internal/email"
	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
	"github.com/ekosolar/lead-pipeline/internal/tracking"
)

// AdminEmailSender sends the internal lead alert. When a tracking
// registry and base URL are configured the alert carries an open pixel
// and click-tracked tel/mailto links, so engagement on the alert feeds
// back into the lead's score.
type AdminEmailSender struct {
	transport       email.Transport
	renderer        *Renderer
	registry        *tracking.Registry
	to              string
	trackingBaseURL string
}

// NewAdminEmailSender creates the admin channel. registry and
// trackingBaseURL may be zero-valued to disable tracking injection.
func NewAdminEmailSender(transport email.Transport, renderer *Renderer, registry *tracking.Registry, to, trackingBaseURL string) *AdminEmailSender {
	return &AdminEmailSender{
		transport:       transport,
		renderer:        renderer,
		registry:        registry,
		to:              to,
		trackingBaseURL: trackingBaseURL,
	}
}

func (s *AdminEmailSender) Channel() string { return domain.ChannelAdminEmail }

// Send renders and delivers the alert.
func (s *AdminEmailSender) Send(ctx context.Context, p Payload) (string, error) {
	lead, score := p.Lead, p.Score

	phoneLink := "tel:" + lead.Phone
	emailLink := "mailto:" + lead.Email
	if s.trackingEnabled() {
		phoneLink = tracking.ClickURL(s.trackingBaseURL, s.registry.MintID(lead.ID, domain.EventClick), "call-phone", phoneLink)
		emailLink = tracking.ClickURL(s.trackingBaseURL, s.registry.MintID(lead.ID, domain.EventClick), "reply-email", emailLink)
	}

	bindings := map[string]interface{}{
		"name":          lead.Name,
		"phone":         lead.Phone,
		"email":         lead.Email,
		"address":       lead.Address,
		"message":       lead.Message,
		"electric_bill": lead.ElectricBill,
		"submitted_at":  lead.SubmittedAt.Format("Jan 2, 2006 3:04 PM MST"),
		"phone_link":    phoneLink,
		"email_link":    emailLink,

		"priority":       string(score.Priority),
		"category":       string(score.Category),
		"total_score":    score.Total,
		"score_bill":     score.ElectricBill,
		"score_location": score.Location,
		"score_urgency":  score.Urgency,
		"score_home":     score.HomeValue,
		"score_timing":   score.Timing,
		"insights":       score.Insights,

		"has_engagement": p.Engagement != nil && p.Engagement.Score > 0,
	}
	if p.Engagement != nil {
		bindings["engagement_summary"] = p.Engagement.Summary
		bindings["engagement_opens"] = p.Engagement.Opens
		bindings["engagement_clicks"] = p.Engagement.Clicks
		bindings["engagement_score"] = p.Engagement.Score
	}

	html, err := s.renderer.Render(adminEmailTemplate, bindings)
	if err != nil {
		return "", fmt.Errorf("rendering admin alert: %w", err)
	}
	if s.trackingEnabled() {
		html = tracking.InjectPixel(html, s.trackingBaseURL, s.registry.MintID(lead.ID, domain.EventOpen))
	}

	msg := email.Message{
		To:      s.to,
		Subject: adminSubject(lead, score),
		HTML:    html,
	}
	if _, err := s.transport.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("sending admin alert: %w", err)
	}

	logger.Info("admin alert sent",
		"lead_id", lead.ID,
		"priority", string(score.Priority),
		"transport", s.transport.Name())
	return s.transport.Name(), nil
}

func (s *AdminEmailSender) trackingEnabled() bool {
	if s.registry == nil || s.trackingBaseURL == "" {
		return false
	}
	_, err := url.Parse(s.trackingBaseURL)
	return err == nil
}
