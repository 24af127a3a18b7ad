package sms

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/ekosolar/lead-pipeline/internal/email"
	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
)

// DefaultCarrierGateways lists the email-to-SMS gateway domains of the
// major US carriers. The recipient's carrier is unknown, so the
// provider sends to all of them; only the real carrier's gateway will
// deliver and the rest bounce silently.
var DefaultCarrierGateways = []string{
	"txt.att.net",              // AT&T
	"vtext.com",                // Verizon
	"tmomail.net",              // T-Mobile
	"sms.myboostmobile.com",    // Boost Mobile
	"msg.fi.google.com",        // Google Fi
	"mmst.net",                 // Sprint
	"pm.sprint.com",            // Sprint PCS
	"messaging.sprintpcs.com",  // Sprint
	"sms.cricketwireless.net",  // Cricket
	"mms.uscc.net",             // US Cellular
}

// maxSMSLen is the single-segment SMS limit; longer texts are truncated
// with an ellipsis rather than split.
const maxSMSLen = 160

// GatewayProvider delivers SMS by emailing every carrier gateway.
// Unlike the provider chain it never stops at the first success:
// over-delivery (duplicate texts) is preferred to under-delivery.
type GatewayProvider struct {
	transport email.Transport
	gateways  []string

	// sendDelay spaces out gateway sends to respect the email
	// transport's rate limits; rateLimitDelay applies after a
	// throttling error. Sequential sends are a correctness
	// requirement here, not an optimization.
	sendDelay      time.Duration
	rateLimitDelay time.Duration

	sleep func(ctx context.Context, d time.Duration)
}

// NewGatewayProvider creates a broadcast provider over the given email
// transport. A nil gateway list uses DefaultCarrierGateways.
func NewGatewayProvider(transport email.Transport, gateways []string) *GatewayProvider {
	if len(gateways) == 0 {
		gateways = DefaultCarrierGateways
	}
	return &GatewayProvider{
		transport:      transport,
		gateways:       gateways,
		sendDelay:      time.Second,
		rateLimitDelay: 2 * time.Second,
		sleep:          sleepCtx,
	}
}

// Name implements Provider.
func (p *GatewayProvider) Name() string { return "email-gateway" }

// Send broadcasts the text to every configured gateway in order, with a
// delay between sends. It reports success if at least one gateway
// accepted the message.
func (p *GatewayProvider) Send(ctx context.Context, to, text string) (*SendResult, error) {
	digits := normalizePhone(to)
	sms := TruncateSMS(text)

	result := &SendResult{
		Provider:          p.Name(),
		GatewaysAttempted: len(p.gateways),
	}

	for i, gw := range p.gateways {
		if i > 0 {
			p.sleep(ctx, p.sendDelay)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		addr := digits + "@" + gw
		// Carriers prefer an empty subject and a bare text body.
		_, err := p.transport.Send(ctx, email.Message{To: addr, Text: sms})
		if err != nil {
			logger.Warn("carrier gateway send failed", "gateway", gw, "error", err.Error())
			if isRateLimitError(err) {
				p.sleep(ctx, p.rateLimitDelay)
			}
			continue
		}

		result.GatewaysSucceeded++
		logger.Debug("carrier gateway accepted", "gateway", gw)
	}

	if result.GatewaysSucceeded == 0 {
		return nil, &BroadcastError{Attempted: result.GatewaysAttempted}
	}
	result.Status = "broadcast"
	return result, nil
}

// TruncateSMS shortens text to a single SMS segment, appending an
// ellipsis when it had to cut. The cut lands on a rune boundary so
// names like "José" never produce invalid UTF-8.
func TruncateSMS(text string) string {
	if len(text) <= maxSMSLen {
		return text
	}
	cut := maxSMSLen - 3
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// BroadcastError reports that no carrier gateway accepted the message.
type BroadcastError struct {
	Attempted int
}

func (e *BroadcastError) Error() string {
	return "all carrier gateways rejected the message"
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
