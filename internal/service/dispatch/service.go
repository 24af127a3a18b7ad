package dispatch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekosolar/lead-pipeline/internal/domain"
	"github.com/ekosolar/lead-pipeline/internal/notify"
	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
	"github.com/ekosolar/lead-pipeline/internal/ratelimit"
	"github.com/ekosolar/lead-pipeline/internal/scoring"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Submission is the raw intake payload before a lead exists.
type Submission struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	Message      string  `json:"message"`
	ElectricBill float64 `json:"electric_bill"`

	// RemoteIP is the client address as seen by the HTTP boundary. It
	// is set by the handler, never by the request body, and keys the
	// rate limiter.
	RemoteIP string `json:"-"`
}

// EngagementSource summarizes prior engagement for a lead.
type EngagementSource interface {
	Summarize(ctx context.Context, leadID string) (*domain.EngagementSummary, error)
}

// Service orchestrates lead intake. It is safe for concurrent use.
type Service struct {
	leads      LeadRepository
	outcomes   OutcomeRepository
	limiter    ratelimit.Limiter
	scorer     *scoring.Scorer
	senders    []notify.ChannelSender
	engagement EngagementSource

	now func() time.Time
}

// NewService creates the dispatch service. engagement may be nil when
// tracking is disabled.
func NewService(leads LeadRepository, outcomes OutcomeRepository, limiter ratelimit.Limiter, scorer *scoring.Scorer, engagement EngagementSource, senders ...notify.ChannelSender) *Service {
	return &Service{
		leads:      leads,
		outcomes:   outcomes,
		limiter:    limiter,
		scorer:     scorer,
		senders:    senders,
		engagement: engagement,
		now:        time.Now,
	}
}

// SetClock injects a clock for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Channels returns the configured channel names, in dispatch order.
func (s *Service) Channels() []string {
	out := make([]string, len(s.senders))
	for i, snd := range s.senders {
		out[i] = snd.Channel()
	}
	return out
}

// Dispatch runs the full pipeline for one submission. The returned
// result is non-nil whenever the submission passed validation, even
// when the error is non-nil.
func (s *Service) Dispatch(ctx context.Context, sub Submission) (*domain.DispatchResult, error) {
	if err := validate(sub); err != nil {
		return nil, err
	}

	identity := rateLimitIdentity(sub)
	allowed, err := s.limiter.Allow(ctx, identity)
	if err != nil {
		// A broken limiter must not drop leads.
		logger.Error("rate limiter unavailable, admitting submission", "error", err.Error())
		allowed = true
	}
	if !allowed {
		logger.Warn("submission rate limited", "identity", identity)
		return &domain.DispatchResult{RateLimited: true}, ErrRateLimited
	}

	lead := &domain.Lead{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(sub.Name),
		Email:        strings.ToLower(strings.TrimSpace(sub.Email)),
		Phone:        strings.TrimSpace(sub.Phone),
		Address:      strings.TrimSpace(sub.Address),
		Message:      strings.TrimSpace(sub.Message),
		ElectricBill: sub.ElectricBill,
		SubmittedAt:  s.now().UTC(),
	}
	if err := s.leads.Insert(ctx, lead); err != nil {
		return nil, fmt.Errorf("persisting lead: %w", err)
	}

	score := s.scorer.Score(*lead)
	logger.Info("lead scored",
		"lead_id", lead.ID,
		"total", score.Total,
		"priority", string(score.Priority),
		"category", string(score.Category))

	payload := notify.Payload{Lead: *lead, Score: score}
	if s.engagement != nil {
		if summary, err := s.engagement.Summarize(ctx, lead.ID); err == nil && summary.Score > 0 {
			payload.Engagement = summary
		}
	}

	result := &domain.DispatchResult{
		LeadID:   lead.ID,
		Score:    score,
		Outcomes: s.fanOut(ctx, payload),
	}

	for i := range result.Outcomes {
		o := &result.Outcomes[i]
		if o.Success {
			result.PartialSuccess = true
		}
		if err := s.outcomes.Insert(ctx, o); err != nil {
			logger.Error("outcome not persisted", "lead_id", lead.ID, "channel", o.Channel, "error", err.Error())
		}
	}

	if !result.PartialSuccess {
		return result, fmt.Errorf("%w: lead %s", ErrAllChannelsFailed, lead.ID)
	}

	logger.Info("lead dispatched",
		"lead_id", lead.ID,
		"channels_ok", len(result.SucceededChannels()),
		"channels_total", len(result.Outcomes))
	return result, nil
}

// fanOut sends every channel concurrently. Outcome order matches the
// configured sender order regardless of completion order.
func (s *Service) fanOut(ctx context.Context, payload notify.Payload) []domain.NotificationOutcome {
	outcomes := make([]domain.NotificationOutcome, len(s.senders))

	var wg sync.WaitGroup
	for i, sender := range s.senders {
		wg.Add(1)
		go func(i int, sender notify.ChannelSender) {
			defer wg.Done()

			provider, err := sender.Send(ctx, payload)
			outcome := domain.NotificationOutcome{
				LeadID:   payload.Lead.ID,
				Channel:  sender.Channel(),
				Success:  err == nil,
				Provider: provider,
				SentAt:   s.now().UTC(),
			}
			if err != nil {
				outcome.Error = err.Error()
				if errors.Is(err, notify.ErrSkipped) {
					logger.Info("channel skipped", "lead_id", payload.Lead.ID, "channel", sender.Channel())
				} else {
					logger.Error("channel failed", "lead_id", payload.Lead.ID, "channel", sender.Channel(), "error", err.Error())
				}
			}
			outcomes[i] = outcome
		}(i, sender)
	}
	wg.Wait()

	return outcomes
}

// Engagement returns the engagement summary for an existing lead.
func (s *Service) Engagement(ctx context.Context, leadID string) (*domain.EngagementSummary, error) {
	if s.engagement == nil {
		return nil, fmt.Errorf("engagement tracking is not configured")
	}
	if _, err := s.leads.Get(ctx, leadID); err != nil {
		return nil, err
	}
	return s.engagement.Summarize(ctx, leadID)
}

// validate applies intake rules before any side effect.
func validate(sub Submission) error {
	name := strings.TrimSpace(sub.Name)
	email := strings.TrimSpace(sub.Email)
	phone := strings.TrimSpace(sub.Phone)

	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case email == "" && phone == "":
		return fmt.Errorf("%w: an email address or phone number is required", ErrValidation)
	case email != "" && !emailPattern.MatchString(email):
		return fmt.Errorf("%w: malformed email address", ErrValidation)
	case sub.ElectricBill < 0:
		return fmt.Errorf("%w: electric bill cannot be negative", ErrValidation)
	}
	return nil
}

// rateLimitIdentity picks the identity the limiter keys on: the client
// IP. Rotating contact details in the body does not mint a fresh
// window. Callers that bypass HTTP leave RemoteIP empty and fall back
// to the email, then the phone digits.
func rateLimitIdentity(sub Submission) string {
	if ip := strings.TrimSpace(sub.RemoteIP); ip != "" {
		return ip
	}
	if email := strings.ToLower(strings.TrimSpace(sub.Email)); email != "" {
		return email
	}
	var digits strings.Builder
	for _, r := range sub.Phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}
