package dispatch

import "errors"

// Sentinel errors for the dispatch service layer.
var (
	// ErrValidation marks a submission rejected before any side effect.
	ErrValidation = errors.New("invalid lead submission")

	// ErrRateLimited marks a submission dropped by the intake limiter.
	// Nothing is persisted and no notification is sent.
	ErrRateLimited = errors.New("submission rate limit exceeded")

	// ErrAllChannelsFailed means the lead was persisted but no
	// notification channel succeeded.
	ErrAllChannelsFailed = errors.New("all notification channels failed")

	// ErrLeadNotFound is returned by repositories when a lead ID does
	// not exist.
	ErrLeadNotFound = errors.New("lead not found")
)
