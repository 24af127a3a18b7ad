package sms

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekosolar/lead-pipeline/internal/email"
)

// fakeTransport records every message; fail selects recipients that
// error out.
type fakeTransport struct {
	sent []email.Message
	fail func(to string) error
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Send(_ context.Context, msg email.Message) (string, error) {
	f.sent = append(f.sent, msg)
	if f.fail != nil {
		if err := f.fail(msg.To); err != nil {
			return "", err
		}
	}
	return "msg-1", nil
}

func noGatewaySleep(p *GatewayProvider) {
	p.sleep = func(context.Context, time.Duration) {}
}

func TestGatewayBroadcastHitsEveryCarrierOnce(t *testing.T) {
	tr := &fakeTransport{}
	p := NewGatewayProvider(tr, nil)
	noGatewaySleep(p)

	result, err := p.Send(context.Background(), "(404) 555-1234", "NEW SOLAR LEAD")
	require.NoError(t, err)

	require.Len(t, tr.sent, len(DefaultCarrierGateways),
		"broadcast must not stop early even though every gateway succeeded")
	assert.Equal(t, len(DefaultCarrierGateways), result.GatewaysAttempted)
	assert.Equal(t, len(DefaultCarrierGateways), result.GatewaysSucceeded)

	seen := map[string]int{}
	for _, msg := range tr.sent {
		seen[msg.To]++
		assert.True(t, strings.HasPrefix(msg.To, "4045551234@"), "number must be digits-only")
		assert.Empty(t, msg.Subject, "carriers prefer an empty subject")
	}
	for _, gw := range DefaultCarrierGateways {
		assert.Equal(t, 1, seen["4045551234@"+gw], "gateway %s exactly once", gw)
	}
}

func TestGatewayBroadcastPartialFailure(t *testing.T) {
	tr := &fakeTransport{fail: func(to string) error {
		if strings.HasSuffix(to, "@vtext.com") || strings.HasSuffix(to, "@tmomail.net") {
			return errors.New("mailbox unavailable")
		}
		return nil
	}}
	p := NewGatewayProvider(tr, nil)
	noGatewaySleep(p)

	result, err := p.Send(context.Background(), "4045551234", "hi")
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCarrierGateways), result.GatewaysAttempted)
	assert.Equal(t, len(DefaultCarrierGateways)-2, result.GatewaysSucceeded)
}

func TestGatewayBroadcastTotalFailure(t *testing.T) {
	tr := &fakeTransport{fail: func(string) error { return errors.New("smtp down") }}
	p := NewGatewayProvider(tr, []string{"vtext.com", "txt.att.net"})
	noGatewaySleep(p)

	_, err := p.Send(context.Background(), "4045551234", "hi")
	require.Error(t, err)

	var bErr *BroadcastError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, 2, bErr.Attempted)
	assert.Len(t, tr.sent, 2)
}

func TestGatewayRateLimitBackoff(t *testing.T) {
	tr := &fakeTransport{fail: func(to string) error {
		if strings.HasSuffix(to, "@vtext.com") {
			return errors.New("Too many requests")
		}
		return nil
	}}
	p := NewGatewayProvider(tr, []string{"vtext.com", "txt.att.net"})

	var slept []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) { slept = append(slept, d) }

	result, err := p.Send(context.Background(), "4045551234", "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, result.GatewaysSucceeded)
	// Extended backoff after the throttled gateway, then the normal
	// inter-send delay; the broadcast continues regardless.
	require.Len(t, slept, 2)
	assert.Equal(t, p.rateLimitDelay, slept[0])
	assert.Equal(t, p.sendDelay, slept[1])
}

func TestTruncateSMS(t *testing.T) {
	assert.Equal(t, "short", TruncateSMS("short"))

	long := strings.Repeat("x", 200)
	got := TruncateSMS(long)
	assert.Len(t, got, 160)
	assert.True(t, strings.HasSuffix(got, "..."))

	exact := strings.Repeat("y", 160)
	assert.Equal(t, exact, TruncateSMS(exact))
}

func TestTruncateSMSKeepsRunesIntact(t *testing.T) {
	// "é" is 2 bytes; pad so the cut point lands mid-rune.
	long := strings.Repeat("x", 156) + "ésolar quote please"
	got := TruncateSMS(long)

	assert.True(t, utf8.ValidString(got), "a cut must never split a rune")
	assert.LessOrEqual(t, len(got), 160)
	assert.Equal(t, strings.Repeat("x", 156)+"...", got)

	allAccents := strings.Repeat("é", 100)
	got = TruncateSMS(allAccents)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 160)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestGatewayTruncatesLongMessages(t *testing.T) {
	tr := &fakeTransport{}
	p := NewGatewayProvider(tr, []string{"vtext.com"})
	noGatewaySleep(p)

	_, err := p.Send(context.Background(), "4045551234", strings.Repeat("z", 300))
	require.NoError(t, err)
	require.Len(t, tr.sent, 1)
	assert.Len(t, tr.sent[0].Text, 160)
}
