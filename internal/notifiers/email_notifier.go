package notifiers

import (
	"context"
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// mailSender is the part of gomail.Dialer the notifier uses.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mirrors alerts to the operator mailbox via SMTP.
type EmailNotifier struct {
	dialer mailSender
	from   string
	to     string
	logger zerolog.Logger
}

// NewEmailNotifier creates a new instance of EmailNotifier.
func NewEmailNotifier(cfg config.EmailConfig, logger *zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.To,
		logger: logger.With().Str("component", "email_notifier").Logger(),
	}
}

// Notify implements the Notifier interface for email.
func (n *EmailNotifier) Notify(_ context.Context, e *model.AlertEvent) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", Subject(e))
	m.SetBody("text/plain", Summary(e))

	// DialAndSend opens a connection, sends the email, and closes it.
	if err := n.dialer.DialAndSend(m); err != nil {
		n.logger.Error().Err(err).Stringer("alert_id", e.AlertID).Msg("failed to send email")
		return err
	}

	n.logger.Info().Stringer("alert_id", e.AlertID).Str("recipient", n.to).Msg("email sent successfully")
	return nil
}
