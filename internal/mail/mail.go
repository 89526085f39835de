// Package mail delivers contact-form messages to the site admins over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"
	gomail "github.com/wneessen/go-mail"

	"github.com/sakif/quill/internal/apperror"
)

// Message is one outgoing email with a plain-text and an HTML body.
type Message struct {
	Subject string
	ReplyTo string // the visitor who filled in the form
	To      []string
	Plain   string
	HTML    string
}

// Mailer sends a Message. Every failure is an apperror.DeliveryFailed.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig describes the outgoing server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPMailer sends through a single SMTP server, opening one connection per
// message.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) *SMTPMailer {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// build turns msg into a go-mail message. Kept separate from Send so it can
// be tested without a server.
func (m *SMTPMailer) build(msg Message) (*gomail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("no recipients")
	}

	out := gomail.NewMsg()
	if err := out.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := out.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to address: %w", err)
		}
	}
	out.Subject(msg.Subject)
	out.SetMessageIDWithValue(xid.New().String() + "@" + m.cfg.Host)
	out.SetDate()
	out.SetBodyString(gomail.TypeTextPlain, msg.Plain)
	if msg.HTML != "" {
		out.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return out, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out, err := m.build(msg)
	if err != nil {
		return apperror.DeliveryFailed(err)
	}

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTimeout(m.cfg.Timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return apperror.DeliveryFailed(fmt.Errorf("mail: creating client: %w", err))
	}

	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		m.logger.Error("sending contact email",
			slog.String("host", m.cfg.Host),
			slog.String("error", err.Error()),
		)
		return apperror.DeliveryFailed(fmt.Errorf("mail: sending: %w", err))
	}

	m.logger.Info("contact email sent", slog.Int("recipients", len(msg.To)))
	return nil
}

// Disabled is the Mailer used when no SMTP server is configured.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) error {
	return apperror.DeliveryFailed(errors.New("mail: no SMTP server configured"))
}
