package service

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/ilindan-dev/safeguard/internal/dispatcher"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/rs/zerolog"
	"strings"
	"time"
)

const (
	// DefaultAlertMessage is sent when neither the request nor the profile carries one.
	DefaultAlertMessage = "I need help! This is an emergency."

	DefaultAlertsLimit = 20
	MaxAlertsLimit     = 100

	// defaultPersistTimeout bounds the writes made after the dispatch has finished.
	defaultPersistTimeout = 5 * time.Second
)

// AlertService encapsulates the SOS flow: resolve, record, dispatch, report.
type AlertService struct {
	contacts       repo.ContactRepository
	profiles       repo.ProfileRepository
	alerts         repo.AlertRepository
	queue          repo.AlertQueue
	dispatcher     *dispatcher.Dispatcher
	defaultMessage string
	persistTimeout time.Duration
	logger         zerolog.Logger
}

// NewAlertService creates a new instance of AlertService.
func NewAlertService(
	cfg *config.Config,
	contacts repo.ContactRepository,
	profiles repo.ProfileRepository,
	alerts repo.AlertRepository,
	queue repo.AlertQueue,
	dispatcher *dispatcher.Dispatcher,
	logger *zerolog.Logger,
) *AlertService {
	defaultMessage := strings.TrimSpace(cfg.Dispatch.DefaultMessage)
	if defaultMessage == "" {
		defaultMessage = DefaultAlertMessage
	}
	return &AlertService{
		contacts:       contacts,
		profiles:       profiles,
		alerts:         alerts,
		queue:          queue,
		dispatcher:     dispatcher,
		defaultMessage: defaultMessage,
		persistTimeout: defaultPersistTimeout,
		logger:         logger.With().Str("layer", "alert_service").Logger(),
	}
}

// SendEmergencySMS dispatches a caller-assembled alert without recording it.
func (s *AlertService) SendEmergencySMS(ctx context.Context, req *model.AlertRequest) ([]model.DispatchResult, error) {
	return s.dispatcher.Dispatch(ctx, req)
}

// TriggerSOS alerts every stored contact of the user and records the outcome.
// A user without contacts gets dispatcher.ErrNoContacts and nothing is recorded.
func (s *AlertService) TriggerSOS(ctx context.Context, userID, message string, location *model.Location) (*model.Alert, error) {
	log := s.logger.With().Str("user_id", userID).Logger()

	contacts, err := s.contacts.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load contacts")
		return nil, err
	}
	if len(contacts) == 0 {
		log.Warn().Msg("sos triggered without any contacts")
		return nil, dispatcher.ErrNoContacts
	}

	displayName, message := s.resolveMessage(ctx, userID, message)

	alert, err := s.alerts.Save(ctx, model.NewAlert(userID, message, location))
	if err != nil {
		log.Error().Err(err).Msg("failed to save alert")
		return nil, err
	}
	log = log.With().Stringer("alert_id", alert.ID).Logger()
	log.Info().Int("contacts", len(contacts)).Msg("sos triggered")

	req := &model.AlertRequest{
		Contacts: make([]model.Contact, 0, len(contacts)),
		Message:  message,
		Location: location,
	}
	for _, c := range contacts {
		req.Contacts = append(req.Contacts, *c)
	}

	results, err := s.dispatcher.Dispatch(ctx, req)

	// The record must reflect the dispatch even if the caller has gone away.
	// The deadline starts only now; the dispatch itself may take a full send timeout.
	persistCtx, cancel := s.persistContext(ctx)
	defer cancel()

	if err != nil {
		alert.Fail()
		if uerr := s.alerts.Update(persistCtx, alert); uerr != nil {
			log.Error().Err(uerr).Msg("failed to mark alert as failed")
		}
		return alert, err
	}

	alert.Complete(results)
	if err := s.alerts.Update(persistCtx, alert); err != nil {
		log.Error().Err(err).Str("status", string(alert.Status)).Msg("failed to record dispatch results")
	}

	if err := s.queue.Publish(persistCtx, model.NewAlertEvent(alert, displayName)); err != nil {
		log.Warn().Err(err).Msg("failed to publish alert event")
	}

	sent, failed := alert.Counts()
	log.Info().Str("status", string(alert.Status)).Int("sent", sent).Int("failed", failed).Msg("sos completed")
	return alert, nil
}

// persistContext detaches from the caller and bounds the post-dispatch writes.
func (s *AlertService) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
}

// resolveMessage picks the alert text: the request's, the profile's, then the default.
// A missing or unreadable profile only loses the custom text.
func (s *AlertService) resolveMessage(ctx context.Context, userID, message string) (displayName, resolved string) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to load profile, using defaults")
	}
	if profile != nil {
		displayName = profile.DisplayName
	}

	switch {
	case strings.TrimSpace(message) != "":
		resolved = strings.TrimSpace(message)
	case profile != nil && profile.AlertMessage != "":
		resolved = profile.AlertMessage
	default:
		resolved = s.defaultMessage
	}
	return displayName, resolved
}

// GetAlert returns one of the user's alerts.
func (s *AlertService) GetAlert(ctx context.Context, userID string, id uuid.UUID) (*model.Alert, error) {
	return s.alerts.GetByID(ctx, userID, id)
}

// ListAlerts returns the user's most recent alerts. The limit is clamped to (0, MaxAlertsLimit].
func (s *AlertService) ListAlerts(ctx context.Context, userID string, limit int) ([]*model.Alert, error) {
	switch {
	case limit <= 0:
		limit = DefaultAlertsLimit
	case limit > MaxAlertsLimit:
		limit = MaxAlertsLimit
	}
	return s.alerts.ListByUser(ctx, userID, limit)
}
