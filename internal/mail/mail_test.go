package mail

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/form"
)

type recorder struct {
	sent []Message
	err  error
}

func (r *recorder) Send(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func contactForm() form.Contact {
	return form.Contact{Name: "Vee <script>", Email: "v@x.com", Subject: "Hello", Message: "Nice blog"}
}

func TestSendContact(t *testing.T) {
	rec := &recorder{}

	err := SendContact(context.Background(), rec, "Quill", []string{"admin@x.com"}, contactForm())
	require.NoError(t, err)

	require.Len(t, rec.sent, 1)
	msg := rec.sent[0]
	assert.Equal(t, "[Quill] Hello", msg.Subject)
	assert.Equal(t, []string{"admin@x.com"}, msg.To)
	assert.Equal(t, "v@x.com", msg.ReplyTo)
	assert.Contains(t, msg.Plain, "Nice blog")
	assert.Contains(t, msg.HTML, "Vee &lt;script&gt;", "HTML body is escaped")
}

func TestSendContact_NoAdmins(t *testing.T) {
	err := SendContact(context.Background(), &recorder{}, "Quill", nil, contactForm())
	assert.ErrorIs(t, err, apperror.ErrDelivery)
}

func TestDisabled(t *testing.T) {
	err := SendContact(context.Background(), Disabled{}, "Quill", []string{"admin@x.com"}, contactForm())
	assert.ErrorIs(t, err, apperror.ErrDelivery)
}

func TestSMTPMailer_Build(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 2525, From: "blog@x.com"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	msg, err := m.build(Message{
		Subject: "[Quill] Hi",
		ReplyTo: "v@x.com",
		To:      []string{"admin@x.com"},
		Plain:   "plain body",
		HTML:    "<p>html body</p>",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: [Quill] Hi")
	assert.Contains(t, raw, "<admin@x.com>")
	assert.Contains(t, raw, "plain body")
	assert.Contains(t, raw, "text/html")
}

func TestSMTPMailer_BuildRejectsBadInput(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", From: "blog@x.com"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := m.build(Message{Subject: "x"})
	assert.Error(t, err)

	_, err = m.build(Message{Subject: "x", To: []string{"not an address"}})
	assert.Error(t, err)
}

func TestSMTPMailer_SendFailureIsDeliveryError(t *testing.T) {
	// Port 1 on localhost refuses connections.
	m := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "blog@x.com"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := m.Send(context.Background(), Message{Subject: "x", To: []string{"admin@x.com"}, Plain: "y"})
	assert.ErrorIs(t, err, apperror.ErrDelivery)
}
