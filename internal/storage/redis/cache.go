package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/ilindan-dev/safeguard/pkg/keybuilder"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"time"
)

// Ensure ContactCache implements the interface
var _ repo.ContactCache = (*ContactCache)(nil)

// ContactCache implements the domain.ContactCache interface
// using the standard go-redis client.
type ContactCache struct {
	redis  goredis.Cmdable
	logger zerolog.Logger
}

// NewContactCache creates a new instance of the ContactCache.
func NewContactCache(logger *zerolog.Logger, redis *goredis.Client) *ContactCache {
	return &ContactCache{
		redis:  redis,
		logger: logger.With().Str("layer", "redis_cache").Logger(),
	}
}

// Get retrieves a user's contact list from the cache.
func (c *ContactCache) Get(ctx context.Context, userID string) ([]*model.Contact, error) {
	key := keybuilder.RedisContactsKeyBuild(userID)
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			c.logger.Debug().Str("key", key).Str("cache", "miss").Msg("contacts not found in cache")
			return nil, repo.ErrNotFound
		}
		c.logger.Error().Err(err).Str("key", key).Msg("failed to get key from redis")
		return nil, err
	}

	var contacts []*model.Contact
	if err := json.Unmarshal(val, &contacts); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to unmarshal contacts from cache")
		return nil, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	c.logger.Debug().Str("key", key).Str("cache", "hit").Msg("contacts found in cache")
	return contacts, nil
}

// Set stores a user's contact list for the specified duration.
func (c *ContactCache) Set(ctx context.Context, userID string, contacts []*model.Contact, expiration time.Duration) error {
	key := keybuilder.RedisContactsKeyBuild(userID)
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	data, err := json.Marshal(contacts)
	if err != nil {
		c.logger.Error().Err(err).Str("user_id", userID).Msg("failed to marshal contacts for cache")
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}

	if err := c.redis.Set(ctx, key, data, expiration).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to set key in redis")
		return err
	}
	return nil
}

// Delete removes a user's contact list from the cache.
func (c *ContactCache) Delete(ctx context.Context, userID string) error {
	key := keybuilder.RedisContactsKeyBuild(userID)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to delete key from redis")
		return err
	}
	return nil
}
