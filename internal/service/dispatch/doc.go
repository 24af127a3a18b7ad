// Package dispatch implements the lead intake pipeline: validate the
// submission, apply the per-identity rate limit, persist the lead,
// score it, then fan out to every configured notification channel
// concurrently.
//
// Channel failures are isolated. One channel's error is recorded as an
// outcome and never prevents the others from sending; a submission is
// reported as accepted when at least one channel got through.
//
// The service layer depends only on the repository interfaces in
// repository.go. It never imports net/http or database/sql directly.
package dispatch
