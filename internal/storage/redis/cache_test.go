package redis

import (
	"context"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
	"time"
)

// setupTestRedis connects to TEST_REDIS_ADDR; the test is skipped when it is unset or unreachable.
func setupTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis integration test")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestContactCache_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := setupTestRedis(t)
	logger := zerolog.Nop()
	cache := NewContactCache(&logger, client)
	ctx := context.Background()
	userID := "cache-test-" + time.Now().Format("150405.000000")

	_, err := cache.Get(ctx, userID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	contacts := []*model.Contact{
		model.NewContact(userID, "Mom", "+15551234567", "Mother"),
		model.NewContact(userID, "Sarah", "+15559876543", "Friend"),
	}
	require.NoError(t, cache.Set(ctx, userID, contacts, time.Minute))

	got, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, contacts[0].ID, got[0].ID)
	assert.Equal(t, "Sarah", got[1].Name)

	require.NoError(t, cache.Set(ctx, userID, nil, time.Minute))
	got, err = cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, cache.Delete(ctx, userID))
	_, err = cache.Get(ctx, userID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
