package domain

import "time"

// EventKind distinguishes tracking event types.
type EventKind string

const (
	EventOpen  EventKind = "open"
	EventClick EventKind = "click"
)

// TrackingEvent is one recorded open or click, immutable once stored.
// TrackingID is self-describing: it encodes the kind, lead ID, and
// creation time without requiring a lookup.
type TrackingEvent struct {
	TrackingID string    `json:"tracking_id"`
	Kind       EventKind `json:"kind"`
	LeadID     string    `json:"lead_id"`
	LinkName   string    `json:"link_name,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EngagementSummary is derived on demand from all tracking events for a
// lead. Score = 10 per open + 25 per click + a recency bonus.
type EngagementSummary struct {
	LeadID       string     `json:"lead_id"`
	Opens        int        `json:"email_opens"`
	Clicks       int        `json:"link_clicks"`
	Score        int        `json:"engagement_score"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
	IsHotLead    bool       `json:"is_hot_lead"`
	Summary      string     `json:"summary"`
}
