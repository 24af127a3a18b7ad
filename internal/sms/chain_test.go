package sms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider records calls and returns a scripted result.
type fakeProvider struct {
	name  string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Send(_ context.Context, to, text string) (*SendResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &SendResult{Provider: f.name, MessageID: f.name + "-msg-1", Status: "queued"}, nil
}

func noSleep(c *FallbackChain) {
	c.sleep = func(context.Context, time.Duration) {}
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	primary := &fakeProvider{name: "telnyx"}
	secondary := &fakeProvider{name: "twilio"}
	chain := NewFallbackChain(
		ChainEntry{Provider: primary, Priority: 1},
		ChainEntry{Provider: secondary, Priority: 2},
	)
	noSleep(chain)

	result, err := chain.Send(context.Background(), "4045551234", "hello")
	require.NoError(t, err)
	assert.Equal(t, "telnyx", result.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls, "chain must not touch later providers after a success")
}

func TestChainFallsBackInPriorityOrder(t *testing.T) {
	primary := &fakeProvider{name: "telnyx", err: errors.New("boom")}
	secondary := &fakeProvider{name: "twilio"}
	// Entries given out of order; priority decides.
	chain := NewFallbackChain(
		ChainEntry{Provider: secondary, Priority: 2},
		ChainEntry{Provider: primary, Priority: 1},
	)
	noSleep(chain)

	assert.Equal(t, []string{"telnyx", "twilio"}, chain.Providers())

	result, err := chain.Send(context.Background(), "4045551234", "hello")
	require.NoError(t, err)
	assert.Equal(t, "twilio", result.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestChainAllProvidersFail(t *testing.T) {
	a := &fakeProvider{name: "telnyx", err: errors.New("down")}
	b := &fakeProvider{name: "twilio", err: errors.New("down")}
	c := &fakeProvider{name: "email-gateway", err: errors.New("down")}
	chain := NewFallbackChain(
		ChainEntry{Provider: a, Priority: 1},
		ChainEntry{Provider: b, Priority: 2},
		ChainEntry{Provider: c, Priority: 3},
	)
	noSleep(chain)

	_, err := chain.Send(context.Background(), "4045551234", "hello")
	require.Error(t, err)

	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, 3, chainErr.ProvidersAttempted)
	assert.Len(t, chainErr.Attempts, 3)
	for _, rec := range chainErr.Attempts {
		assert.False(t, rec.Success)
	}
}

func TestChainDelaysBetweenAttempts(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("down")}
	b := &fakeProvider{name: "b"}
	chain := NewFallbackChain(
		ChainEntry{Provider: a, Priority: 1},
		ChainEntry{Provider: b, Priority: 2},
	)

	var slept []time.Duration
	chain.sleep = func(_ context.Context, d time.Duration) { slept = append(slept, d) }

	_, err := chain.Send(context.Background(), "4045551234", "hello")
	require.NoError(t, err)
	require.Len(t, slept, 1, "one inter-provider delay expected")
	assert.Equal(t, chain.attemptDelay, slept[0])
}

func TestChainExtendedBackoffOnRateLimit(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("API error (status 429): Too Many Requests")}
	b := &fakeProvider{name: "b"}
	chain := NewFallbackChain(
		ChainEntry{Provider: a, Priority: 1},
		ChainEntry{Provider: b, Priority: 2},
	)

	var slept []time.Duration
	chain.sleep = func(_ context.Context, d time.Duration) { slept = append(slept, d) }

	_, err := chain.Send(context.Background(), "4045551234", "hello")
	require.NoError(t, err)
	// Rate-limit backoff after provider a, then the normal delay before
	// provider b.
	require.Len(t, slept, 2)
	assert.Equal(t, chain.rateLimitDelay, slept[0])
	assert.Equal(t, chain.attemptDelay, slept[1])
	assert.Equal(t, 1, b.calls, "rate limit must not abort the chain")
}

func TestChainNoProviders(t *testing.T) {
	chain := NewFallbackChain()
	_, err := chain.Send(context.Background(), "4045551234", "hello")
	assert.Error(t, err)
}
