package service

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/rs/zerolog"
	"strings"
	"time"
)

// ErrInvalidInput is returned for requests missing a required field.
var ErrInvalidInput = errors.New("invalid input")

// ContactService manages a user's emergency contacts.
type ContactService struct {
	repo   repo.ContactRepository
	logger zerolog.Logger
}

// NewContactService creates a new instance of ContactService.
func NewContactService(repo repo.ContactRepository, logger *zerolog.Logger) *ContactService {
	return &ContactService{
		repo:   repo,
		logger: logger.With().Str("layer", "contact_service").Logger(),
	}
}

// CreateContact adds a contact for the user. Name and phone are required;
// the phone number is stored as given apart from surrounding whitespace.
func (s *ContactService) CreateContact(ctx context.Context, userID, name, phone, relationship string) (*model.Contact, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(phone) == "" {
		return nil, ErrInvalidInput
	}

	contact := model.NewContact(userID, name, phone, relationship)
	created, err := s.repo.Create(ctx, contact)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to save contact")
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Stringer("id", created.ID).Msg("contact saved")
	return created, nil
}

// ListContacts returns the user's contacts in creation order.
func (s *ContactService) ListContacts(ctx context.Context, userID string) ([]*model.Contact, error) {
	return s.repo.ListByUser(ctx, userID)
}

// DeleteContact removes one of the user's contacts.
func (s *ContactService) DeleteContact(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Stringer("id", id).Msg("contact removed")
	return nil
}

// ProfileService manages the per-user SOS settings.
type ProfileService struct {
	repo   repo.ProfileRepository
	logger zerolog.Logger
}

// NewProfileService creates a new instance of ProfileService.
func NewProfileService(repo repo.ProfileRepository, logger *zerolog.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		logger: logger.With().Str("layer", "profile_service").Logger(),
	}
}

// GetProfile returns the user's profile, or repository.ErrNotFound.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return s.repo.Get(ctx, userID)
}

// UpdateProfile creates or replaces the user's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID, displayName, alertMessage string) (*model.Profile, error) {
	p := &model.Profile{
		UserID:       userID,
		DisplayName:  strings.TrimSpace(displayName),
		AlertMessage: strings.TrimSpace(alertMessage),
		UpdatedAt:    time.Now().UTC(),
	}
	saved, err := s.repo.Upsert(ctx, p)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to save profile")
		return nil, err
	}
	return saved, nil
}
