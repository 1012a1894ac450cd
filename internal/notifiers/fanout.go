package notifiers

import (
	"context"
	"errors"
	"fmt"
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	"github.com/rs/zerolog"
)

// Channel names recorded in model.AlertEvent.Delivered.
const (
	ChannelLog      = "log"
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

// channel is a notifier registered under a stable name.
type channel struct {
	name     string
	notifier Notifier
}

// Fanout is a composite notifier that mirrors every event to all enabled channels.
// It implements the Notifier interface itself.
type Fanout struct {
	channels []channel
	logger   zerolog.Logger
}

// NewFanout creates a Fanout with the channels enabled by the configuration mode.
// The log channel is always present; email and telegram join in "production" mode
// when configured.
func NewFanout(cfg *config.Config, logger *zerolog.Logger) (*Fanout, error) {
	log := logger.With().Str("component", "notifier_fanout").Logger()
	log.Info().Str("mode", cfg.Notifiers.Mode).Msg("initializing notifiers")

	f := &Fanout{logger: log}
	f.add(ChannelLog, NewLogNotifier(logger))

	if cfg.Notifiers.Mode == config.ModeProduction {
		if cfg.Notifiers.Email.Host != "" {
			f.add(ChannelEmail, NewEmailNotifier(cfg.Notifiers.Email, logger))
			log.Info().Msg("email notifier enabled")
		}
		if cfg.Notifiers.Telegram.BotToken != "" {
			tgNotifier, err := NewTelegramNotifier(cfg.Notifiers.Telegram, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
			}
			f.add(ChannelTelegram, tgNotifier)
			log.Info().Msg("telegram notifier enabled")
		}
	}

	return f, nil
}

func (f *Fanout) add(name string, n Notifier) {
	f.channels = append(f.channels, channel{name: name, notifier: n})
}

// Notify implements the Notifier interface. Channels listed in e.Delivered are
// skipped; every channel that succeeds is appended to it, so a retried event
// only reaches the channels that failed before. The returned error joins the
// failures of this round.
func (f *Fanout) Notify(ctx context.Context, e *model.AlertEvent) error {
	var errs []error
	for _, ch := range f.channels {
		if e.IsDelivered(ch.name) {
			continue
		}
		if err := ch.notifier.Notify(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.name, err))
			continue
		}
		e.Delivered = append(e.Delivered, ch.name)
	}
	if len(errs) > 0 {
		f.logger.Warn().
			Stringer("alert_id", e.AlertID).
			Int("failed_channels", len(errs)).
			Strs("delivered", e.Delivered).
			Msg("alert mirror incomplete")
	}
	return errors.Join(errs...)
}
