package redis

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/rs/zerolog"
	"time"
)

const defaultContactsTTL = 10 * time.Minute

// Ensure CachedContactRepository implements the interface
var _ repo.ContactRepository = (*CachedContactRepository)(nil)

// CachedContactRepository is a decorator for a ContactRepository
// that caches each user's contact list in Redis.
type CachedContactRepository struct {
	primaryRepo repo.ContactRepository
	cache       repo.ContactCache
	logger      zerolog.Logger
	ttl         time.Duration
}

// NewCachedContactRepository creates a new instance of the cached repository.
// It takes the primary repository and the cache as dependencies.
func NewCachedContactRepository(
	primaryRepo repo.ContactRepository,
	cache repo.ContactCache,
	cfg *config.Config,
	logger *zerolog.Logger,
) *CachedContactRepository {
	ttl := cfg.Redis.ContactsTTL
	if ttl <= 0 {
		ttl = defaultContactsTTL
	}
	return &CachedContactRepository{
		primaryRepo: primaryRepo,
		cache:       cache,
		logger:      logger.With().Str("layer", "cached_repository").Logger(),
		ttl:         ttl,
	}
}

// Create persists the contact, then invalidates the user's cached list.
func (r *CachedContactRepository) Create(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	created, err := r.primaryRepo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Delete(ctx, c.UserID); err != nil {
		r.logger.Error().Err(err).Str("user_id", c.UserID).Msg("failed to invalidate cache after create")
	}

	return created, nil
}

// ListByUser implements the cache-aside pattern.
// A cache error is logged and the primary repository answers instead.
func (r *CachedContactRepository) ListByUser(ctx context.Context, userID string) ([]*model.Contact, error) {
	cached, err := r.cache.Get(ctx, userID)
	if err == nil {
		return cached, nil
	}

	if !errors.Is(err, repo.ErrNotFound) {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("cache get error, falling back to primary repository")
	}

	contacts, err := r.primaryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, userID, contacts, r.ttl); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to set cache after db fetch")
	}

	return contacts, nil
}

// Delete removes the contact from the primary repository,
// then invalidates the user's cached list.
func (r *CachedContactRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := r.primaryRepo.Delete(ctx, userID, id); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to invalidate cache after delete")
	}

	return nil
}
