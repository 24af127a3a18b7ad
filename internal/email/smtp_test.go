package email

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPTransportBuildsMessage(t *testing.T) {
	tr := NewSMTPTransport("smtp.gmail.com", 587, "alerts@example.com", "app-pass", "")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	tr.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	id, err := tr.Send(context.Background(), Message{
		To:      "4045551234@vtext.com",
		Subject: "",
		Text:    "NEW SOLAR LEAD",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "smtp-"))

	assert.Equal(t, "smtp.gmail.com:587", gotAddr)
	assert.Equal(t, "alerts@example.com", gotFrom)
	assert.Equal(t, []string{"4045551234@vtext.com"}, gotTo)

	body := string(gotMsg)
	assert.Contains(t, body, "To: 4045551234@vtext.com")
	assert.Contains(t, body, "Content-Type: text/plain")
	assert.Contains(t, body, "NEW SOLAR LEAD")
}

func TestSMTPTransportHTMLOnlyMessage(t *testing.T) {
	tr := NewSMTPTransport("smtp.gmail.com", 0, "alerts@example.com", "pw", "")
	tr.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		assert.Contains(t, string(msg), "Content-Type: text/html")
		return nil
	}

	_, err := tr.Send(context.Background(), Message{To: "a@b.com", Subject: "hi", HTML: "<p>hi</p>"})
	require.NoError(t, err)
}
