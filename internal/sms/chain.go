package sms

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
)

// ChainEntry pairs a provider with its priority. Lower priority numbers
// are tried first.
type ChainEntry struct {
	Provider Provider
	Priority int
}

// AttemptRecord captures one provider attempt for diagnostics and
// tests: the "did we try all N" property is directly observable.
type AttemptRecord struct {
	Provider string `json:"provider"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// ChainError reports that every provider in the chain failed.
type ChainError struct {
	ProvidersAttempted int
	Attempts           []AttemptRecord
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("all %d SMS providers failed", e.ProvidersAttempted)
}

// FallbackChain tries SMS providers strictly in priority order and
// stops at the first success. Attempts are sequential with an inserted
// delay so a failing provider's traffic doesn't immediately pile onto
// the next one.
type FallbackChain struct {
	entries []ChainEntry

	attemptDelay   time.Duration
	rateLimitDelay time.Duration
	sleep          func(ctx context.Context, d time.Duration)
}

// NewFallbackChain builds a chain from the given entries, sorted by
// priority. The order is stable and reproducible.
func NewFallbackChain(entries ...ChainEntry) *FallbackChain {
	sorted := make([]ChainEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &FallbackChain{
		entries:        sorted,
		attemptDelay:   time.Second,
		rateLimitDelay: 2 * time.Second,
		sleep:          sleepCtx,
	}
}

// Providers returns the provider names in attempt order.
func (c *FallbackChain) Providers() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Provider.Name()
	}
	return out
}

// Send tries each provider in priority order until one succeeds. On
// total failure it returns a ChainError carrying the attempted count
// and per-provider records.
func (c *FallbackChain) Send(ctx context.Context, to, text string) (*SendResult, error) {
	if len(c.entries) == 0 {
		return nil, fmt.Errorf("no SMS providers configured")
	}

	var attempts []AttemptRecord

	for i, entry := range c.entries {
		if i > 0 {
			c.sleep(ctx, c.attemptDelay)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		name := entry.Provider.Name()
		logger.Debug("trying SMS provider", "provider", name, "attempt", i+1)

		result, err := entry.Provider.Send(ctx, to, text)
		if err == nil && result != nil {
			attempts = append(attempts, AttemptRecord{Provider: name, Success: true})
			logger.Info("SMS sent", "provider", name, "sms_to", to)
			return result, nil
		}

		errMsg := "no result"
		if err != nil {
			errMsg = err.Error()
		}
		attempts = append(attempts, AttemptRecord{Provider: name, Error: errMsg})
		logger.Warn("SMS provider failed", "provider", name, "error", errMsg)

		// A throttled provider usually means the next one is about to
		// see a burst too; back off longer but keep going.
		if isRateLimitError(err) {
			c.sleep(ctx, c.rateLimitDelay)
		}
	}

	return nil, &ChainError{ProvidersAttempted: len(c.entries), Attempts: attempts}
}
