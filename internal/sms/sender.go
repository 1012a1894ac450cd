// Package sms sends text messages through an outbound SMS provider.
package sms

import (
	"context"
	"errors"
	"fmt"
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/rs/zerolog"
)

// ErrMissingCredentials is returned when the provider account, token or sending number is unset.
var ErrMissingCredentials = errors.New("sms: provider credentials not configured")

// Message is a single outbound text.
type Message struct {
	To   string
	Body string
}

// Receipt is what the provider hands back for an accepted message.
type Receipt struct {
	SID    string // Provider-assigned message id.
	Status string // Provider delivery status at acceptance time, e.g. "queued".
}

// Sender defines the interface for any SMS provider.
type Sender interface {
	// Send submits one message. A rejection by the provider is reported as *ProviderError.
	Send(ctx context.Context, msg Message) (*Receipt, error)

	// Validate reports whether the sender is able to send at all.
	Validate() error
}

// ProviderError is a send the provider answered with a non-success status.
type ProviderError struct {
	StatusCode int    // HTTP status returned by the provider.
	Code       int    // Provider error code, zero when absent.
	Message    string // Provider error message, or the HTTP status text.
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("sms: provider rejected message (http %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("sms: provider rejected message (http %d): %s", e.StatusCode, e.Message)
}

// NewSender picks the sender for the configured mode.
// In "log_only" mode messages are only logged; in "production" they go to Twilio.
func NewSender(cfg *config.Config, logger *zerolog.Logger) Sender {
	log := logger.With().Str("component", "sms_sender").Logger()
	if cfg.SMS.Mode == config.ModeProduction {
		log.Info().Msg("twilio sender enabled")
		return NewTwilioClient(cfg.SMS.Twilio, logger)
	}
	log.Warn().Str("mode", cfg.SMS.Mode).Msg("sms messages will only be logged")
	return NewLogSender(logger)
}
