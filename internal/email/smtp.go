package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPTransport sends email through an authenticated SMTP relay
// (typically Gmail with an app password). Carrier SMS gateways accept
// mail from established relays more reliably than from API senders, so
// this transport backs the carrier-gateway broadcast.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	from     string

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPTransport creates an SMTP transport. The username doubles as
// the from address when from is empty.
func NewSMTPTransport(host string, port int, username, password, from string) *SMTPTransport {
	if port == 0 {
		port = 587
	}
	if from == "" {
		from = username
	}
	return &SMTPTransport{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		send:     smtp.SendMail,
	}
}

// Name implements Transport.
func (t *SMTPTransport) Name() string { return "smtp" }

// Send delivers the message over the relay. smtp.SendMail has no
// context support, so the call runs in a goroutine and the context
// deadline is honored by abandoning the wait.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) (string, error) {
	body := msg.Text
	contentType := "text/plain; charset=utf-8"
	if msg.HTML != "" && msg.Text == "" {
		body = msg.HTML
		contentType = "text/html; charset=utf-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", t.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(body)

	auth := smtp.PlainAuth("", t.username, t.password, t.host)
	addr := fmt.Sprintf("%s:%d", t.host, t.port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- t.send(addr, auth, t.from, []string{msg.To}, []byte(b.String()))
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return "", fmt.Errorf("smtp send: %w", err)
		}
		// SMTP has no provider message ID; synthesize one for outcome
		// records.
		return "smtp-" + uuid.NewString(), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
