package domain

import "time"

// Channel names for notification outcomes.
const (
	ChannelAdminEmail    = "admin_email"
	ChannelCustomerEmail = "customer_email"
	ChannelSMS           = "sms"
	ChannelPush          = "push"
)

// NotificationOutcome records the result of one channel's send attempt
// for one lead. Transport failures are captured here, never raised.
type NotificationOutcome struct {
	LeadID   string    `json:"lead_id"`
	Channel  string    `json:"channel"`
	Success  bool      `json:"success"`
	Provider string    `json:"provider,omitempty"`
	Error    string    `json:"error,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

// DispatchResult aggregates all channel outcomes for one lead.
// PartialSuccess is true when at least one channel succeeded, which is
// the bar for reporting the submission itself as accepted.
type DispatchResult struct {
	LeadID         string                `json:"lead_id"`
	Score          LeadScore             `json:"score"`
	Outcomes       []NotificationOutcome `json:"outcomes"`
	PartialSuccess bool                  `json:"partial_success"`
	RateLimited    bool                  `json:"rate_limited,omitempty"`
}

// SucceededChannels returns the names of channels that succeeded.
func (r DispatchResult) SucceededChannels() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Success {
			out = append(out, o.Channel)
		}
	}
	return out
}
