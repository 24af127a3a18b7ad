// Package email contains the outbound email transports. Every channel
// that ultimately delivers through email (admin notification, customer
// welcome, carrier-gateway SMS) goes through the Transport interface so
// the provider can be swapped without touching the senders.
package email

import "context"

// Message is one outbound email. Text is optional; carriers' SMS
// gateways prefer a plain-text body and an empty subject.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers a single message and returns the provider's
// message ID.
type Transport interface {
	// Name identifies the transport in outcomes and logs.
	Name() string

	// Send delivers the message. A non-nil error means the provider
	// rejected or never accepted the message.
	Send(ctx context.Context, msg Message) (string, error)
}
