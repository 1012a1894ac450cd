package sms

import (
	"context"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"strings"
)

// LogSender is a mock sender that implements the Sender interface.
// It writes each message to the log instead of reaching a provider.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a new instance of LogSender.
func NewLogSender(logger *zerolog.Logger) *LogSender {
	return &LogSender{
		logger: logger.With().Str("component", "log_sender").Logger(),
	}
}

// Send implements the Sender interface.
func (s *LogSender) Send(_ context.Context, msg Message) (*Receipt, error) {
	sid := "LOG" + strings.ReplaceAll(uuid.NewString(), "-", "")

	s.logger.Info().
		Str("sid", sid).
		Str("to", msg.To).
		Str("body", msg.Body).
		Msg(">>> MOCK SEND: SMS dispatched")

	return &Receipt{SID: sid, Status: "logged"}, nil
}

// Validate implements the Sender interface. A LogSender is always ready.
func (s *LogSender) Validate() error {
	return nil
}
