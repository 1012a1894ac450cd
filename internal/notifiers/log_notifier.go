package notifiers

import (
	"context"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	"github.com/rs/zerolog"
)

// LogNotifier writes the alert summary to the log instead of a real channel.
// It is always enabled, so every SOS leaves a trace in the worker output.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new instance of LogNotifier.
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With().Str("component", "log_notifier").Logger(),
	}
}

// Notify implements the Notifier interface.
func (n *LogNotifier) Notify(_ context.Context, e *model.AlertEvent) error {
	ev := n.logger.Warn().
		Stringer("alert_id", e.AlertID).
		Str("user", e.Who()).
		Str("status", string(e.Status)).
		Int("sent", e.Sent).
		Int("failed", e.Failed)
	if e.Location != nil {
		ev = ev.Str("location", e.Location.MapLink())
	}
	ev.Msg(">>> SOS MIRROR: " + Subject(e))
	return nil
}
