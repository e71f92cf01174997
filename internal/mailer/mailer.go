package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message names a template and supplies its variables; rendering happens
// inside the sender. Domain code never builds markup.
type Message struct {
	To       string
	ToName   string
	Template string
	Vars     map[string]string
}

// Sender delivers templated mail. Implementations can be swapped without
// changing callers; the Noop sender stands in when no provider is configured.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Noop drops every message. Used in dev and when SENDGRID_API_KEY is unset.
type Noop struct{}

func (Noop) Send(ctx context.Context, msg Message) error { return nil }

type SendgridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendgridSender renders a registered template and sends it via SendGrid.
type SendgridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	log       zerolog.Logger
}

func NewSendgridSender(cfg SendgridConfig, log zerolog.Logger) *SendgridSender {
	return &SendgridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		log:       log,
	}
}

func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	rendered, err := Render(msg.Template, msg.Vars)
	if err != nil {
		return err
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	m := mail.NewSingleEmail(from, rendered.Subject, to, rendered.Text, rendered.HTML)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}

	s.log.Info().Str("to", msg.To).Str("template", msg.Template).Msg("email sent")
	return nil
}
