// Package tracking records post-submission engagement: email opens via
// a pixel and link clicks via redirect URLs. Tracking IDs are
// self-describing — kind, lead ID, and creation time are recoverable
// from the ID itself without a store lookup.
package tracking

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/ekosolar/lead-pipeline/internal/domain"
	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
)

// idDelimiter joins tracking ID segments. Lead IDs are UUIDs and never
// contain it.
const idDelimiter = "_"

// Engagement score weights and thresholds.
const (
	openPoints      = 10
	clickPoints     = 25
	veryRecentBonus = 50 // last activity under an hour ago
	recentBonus     = 25 // last activity under a day ago
	hotLeadScore    = 50 // strictly above → hot lead
)

// Sentinel errors for the tracking registry.
var (
	ErrMalformedID = fmt.Errorf("malformed tracking id")
	ErrUnknownKind = fmt.Errorf("unknown tracking event kind")
)

// Repository persists tracking events. Implementations must be safe
// for concurrent use.
type Repository interface {
	// Insert stores one immutable event.
	Insert(ctx context.Context, evt *domain.TrackingEvent) error

	// ListByLead returns all events for a lead, newest first.
	ListByLead(ctx context.Context, leadID string) ([]domain.TrackingEvent, error)
}

// ParsedID is the decoded form of a tracking ID.
type ParsedID struct {
	Kind     domain.EventKind
	LeadID   string
	MintedAt time.Time
	Suffix   string
}

// Registry mints tracking IDs and records engagement events. It is
// shared across requests and safe for concurrent use.
type Registry struct {
	repo Repository
	now  func() time.Time
}

// NewRegistry creates a registry over the given repository.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo: repo,
		now:  time.Now,
	}
}

// SetClock injects a clock for tests.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

// MintID builds a new tracking ID: kind_leadID_millis_suffix. The
// suffix is random enough to be unguessable for this use, not
// cryptographically secure. The package-level source is used so
// concurrent mints never contend on shared RNG state.
func (r *Registry) MintID(leadID string, kind domain.EventKind) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = letters[rand.Intn(len(letters))]
	}
	return strings.Join([]string{
		string(kind),
		leadID,
		strconv.FormatInt(r.now().UnixMilli(), 10),
		string(suffix),
	}, idDelimiter)
}

// ParseID decodes a tracking ID minted by MintID.
func ParseID(id string) (*ParsedID, error) {
	parts := strings.Split(id, idDelimiter)
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedID, id)
	}

	kind := domain.EventKind(parts[0])
	if kind != domain.EventOpen && kind != domain.EventClick {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, parts[0])
	}

	millis, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp in %q", ErrMalformedID, id)
	}

	return &ParsedID{
		Kind:     kind,
		LeadID:   parts[1],
		MintedAt: time.UnixMilli(millis).UTC(),
		Suffix:   parts[3],
	}, nil
}

// RecordOpen stores an email-open event for the given tracking ID.
func (r *Registry) RecordOpen(ctx context.Context, trackingID, userAgent, ipAddress string) (*domain.TrackingEvent, error) {
	parsed, err := ParseID(trackingID)
	if err != nil {
		return nil, err
	}

	evt := &domain.TrackingEvent{
		TrackingID: trackingID,
		Kind:       domain.EventOpen,
		LeadID:     parsed.LeadID,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
		OccurredAt: r.now().UTC(),
	}
	if err := r.repo.Insert(ctx, evt); err != nil {
		return nil, fmt.Errorf("recording open: %w", err)
	}

	logger.Info("email opened", "lead_id", parsed.LeadID, "tracking_id", trackingID)
	return evt, nil
}

// RecordClick stores a link-click event for the given tracking ID.
func (r *Registry) RecordClick(ctx context.Context, trackingID, linkName, userAgent, ipAddress string) (*domain.TrackingEvent, error) {
	parsed, err := ParseID(trackingID)
	if err != nil {
		return nil, err
	}

	evt := &domain.TrackingEvent{
		TrackingID: trackingID,
		Kind:       domain.EventClick,
		LeadID:     parsed.LeadID,
		LinkName:   linkName,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
		OccurredAt: r.now().UTC(),
	}
	if err := r.repo.Insert(ctx, evt); err != nil {
		return nil, fmt.Errorf("recording click: %w", err)
	}

	logger.Info("link clicked", "lead_id", parsed.LeadID, "link", linkName)
	return evt, nil
}

// Summarize derives the engagement summary for a lead from its events.
func (r *Registry) Summarize(ctx context.Context, leadID string) (*domain.EngagementSummary, error) {
	events, err := r.repo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	summary := &domain.EngagementSummary{LeadID: leadID}
	for _, evt := range events {
		switch evt.Kind {
		case domain.EventOpen:
			summary.Opens++
		case domain.EventClick:
			summary.Clicks++
		}
		if summary.LastActivity == nil || evt.OccurredAt.After(*summary.LastActivity) {
			t := evt.OccurredAt
			summary.LastActivity = &t
		}
	}

	summary.Score = summary.Opens*openPoints + summary.Clicks*clickPoints
	if summary.LastActivity != nil {
		since := r.now().Sub(*summary.LastActivity)
		if since < time.Hour {
			summary.Score += veryRecentBonus
		} else if since < 24*time.Hour {
			summary.Score += recentBonus
		}
	}

	summary.IsHotLead = summary.Score > hotLeadScore
	summary.Summary = summaryLabel(summary.Score)
	return summary, nil
}

func summaryLabel(score int) string {
	switch {
	case score > 75:
		return "Hot Lead - High Engagement"
	case score > 50:
		return "Warm Lead - Moderate Engagement"
	case score > 25:
		return "Interested - Some Engagement"
	case score > 0:
		return "Aware - Basic Engagement"
	default:
		return "Cold - No Engagement"
	}
}
