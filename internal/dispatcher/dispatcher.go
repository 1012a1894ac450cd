// Package dispatcher fans an emergency alert out to every contact through the SMS provider.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	"github.com/ilindan-dev/safeguard/internal/sms"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"time"
)

const (
	// alertPrefix starts every outbound alert text.
	alertPrefix = "EMERGENCY ALERT: "

	defaultConcurrency = 4
	defaultSendTimeout = 10 * time.Second
)

var (
	// ErrNotConfigured is returned when the provider cannot send; no contact is attempted.
	ErrNotConfigured = errors.New("dispatcher: sms provider is not configured")
	// ErrNoContacts is returned for an alert with nobody to notify.
	ErrNoContacts = errors.New("dispatcher: no contacts to alert")
)

// Dispatcher sends one message per contact and reports a result for each of them.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	sender      sms.Sender
	concurrency int
	sendTimeout time.Duration
	logger      zerolog.Logger
}

// NewDispatcher creates a new Dispatcher on top of the given sender.
func NewDispatcher(cfg *config.Config, sender sms.Sender, logger *zerolog.Logger) *Dispatcher {
	concurrency := cfg.Dispatch.Concurrency
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	sendTimeout := cfg.Dispatch.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Dispatcher{
		sender:      sender,
		concurrency: concurrency,
		sendTimeout: sendTimeout,
		logger:      logger.With().Str("component", "alert_dispatcher").Logger(),
	}
}

// ComposeMessage builds the outbound text: the alert prefix, the user's message and,
// when a location is known, a map link.
func ComposeMessage(message string, location *model.Location) string {
	text := alertPrefix + message
	if location != nil {
		text += " Location: " + location.MapLink()
	}
	return text
}

// Dispatch attempts delivery to every contact in req and returns one result per contact,
// in input order. A failed contact never stops the others. Once started, the sends are not
// cancelled by ctx; each one is bounded by the configured send timeout instead.
func (d *Dispatcher) Dispatch(ctx context.Context, req *model.AlertRequest) ([]model.DispatchResult, error) {
	if err := d.sender.Validate(); err != nil {
		d.logger.Error().Err(err).Msg("refusing to dispatch: sms provider not configured")
		return nil, fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}
	if len(req.Contacts) == 0 {
		return nil, ErrNoContacts
	}

	body := ComposeMessage(req.Message, req.Location)
	d.logger.Info().
		Int("contacts", len(req.Contacts)).
		Bool("with_location", req.Location != nil).
		Msg("dispatching emergency alert")

	results := make([]model.DispatchResult, len(req.Contacts))
	sendCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, contact := range req.Contacts {
		g.Go(func() error {
			results[i] = d.send(sendCtx, contact, body)
			return nil
		})
	}
	_ = g.Wait()

	sent, failed := 0, 0
	for _, r := range results {
		if r.Status == model.DispatchSent {
			sent++
		} else {
			failed++
		}
	}
	d.logger.Info().Int("sent", sent).Int("failed", failed).Msg("emergency alert dispatched")

	return results, nil
}

// send delivers to a single contact and converts every outcome into a result.
func (d *Dispatcher) send(ctx context.Context, contact model.Contact, body string) model.DispatchResult {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	result := model.DispatchResult{Contact: contact.Name}

	receipt, err := d.sender.Send(ctx, sms.Message{To: contact.Phone, Body: body})
	if err != nil {
		var perr *sms.ProviderError
		if errors.As(err, &perr) {
			d.logger.Warn().Err(err).Str("contact", contact.Name).Str("phone", contact.Phone).Msg("failed to send sms")
			result.Status = model.DispatchFailed
			result.Error = perr.Message
			return result
		}
		d.logger.Error().Err(err).Str("contact", contact.Name).Str("phone", contact.Phone).Msg("error sending sms")
		result.Status = model.DispatchError
		result.Error = err.Error()
		return result
	}

	d.logger.Info().Str("contact", contact.Name).Str("sid", receipt.SID).Msg("sms sent successfully")
	result.Status = model.DispatchSent
	result.SID = receipt.SID
	return result
}
