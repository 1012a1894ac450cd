package postgres

import (
	"context"
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
	"time"
)

// setupTestPool connects to TEST_PG_DSN and applies migrations.
// Tests are skipped when the variable is unset.
func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set, skipping postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))
	// Second run must be a no-op.
	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))
	return pool
}

func testUserID() string {
	return "it-" + uuid.NewString()
}

func TestContactRepository_Integration(t *testing.T) {
	pool := setupTestPool(t)
	logger := zerolog.Nop()
	r := NewContactRepository(pool, &logger)
	ctx := context.Background()
	userID := testUserID()

	mom := model.NewContact(userID, "Mom", "+15551234567", "Mother")
	created, err := r.Create(ctx, mom)
	require.NoError(t, err)
	assert.Equal(t, mom.ID, created.ID)

	_, err = r.Create(ctx, model.NewContact(userID, "Mom again", "+15551234567", ""))
	assert.ErrorIs(t, err, repo.ErrDuplicateRecord)

	sarah := model.NewContact(userID, "Sarah", "+15559876543", "Friend")
	sarah.CreatedAt = mom.CreatedAt.Add(time.Second)
	_, err = r.Create(ctx, sarah)
	require.NoError(t, err)

	list, err := r.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Mom", list[0].Name)
	assert.Equal(t, "Sarah", list[1].Name)

	require.NoError(t, r.Delete(ctx, userID, mom.ID))
	assert.ErrorIs(t, r.Delete(ctx, userID, mom.ID), repo.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "someone-else", sarah.ID), repo.ErrNotFound)

	empty, err := r.ListByUser(ctx, testUserID())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestProfileRepository_Integration(t *testing.T) {
	pool := setupTestPool(t)
	logger := zerolog.Nop()
	r := NewProfileRepository(pool, &logger)
	ctx := context.Background()
	userID := testUserID()

	_, err := r.Get(ctx, userID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = r.Upsert(ctx, &model.Profile{UserID: userID, DisplayName: "Ana", AlertMessage: "Help me", UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)
	saved, err := r.Upsert(ctx, &model.Profile{UserID: userID, DisplayName: "Ana B", AlertMessage: "Call me", UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, "Ana B", saved.DisplayName)

	got, err := r.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Call me", got.AlertMessage)
}

func TestAlertRepository_Integration(t *testing.T) {
	pool := setupTestPool(t)
	logger := zerolog.Nop()
	r := NewAlertRepository(pool, &logger)
	ctx := context.Background()
	userID := testUserID()

	a := model.NewAlert(userID, "help", &model.Location{Lat: 1, Lng: 2})
	saved, err := r.Save(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, model.AlertTriggered, saved.Status)
	require.NotNil(t, saved.Location)
	assert.Equal(t, 2.0, saved.Location.Lng)

	a.Complete([]model.DispatchResult{{Contact: "Mom", Status: model.DispatchSent, SID: "SM1"}})
	require.NoError(t, r.Update(ctx, a))

	got, err := r.GetByID(ctx, userID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlertSent, got.Status)
	assert.Equal(t, a.Results, got.Results)

	_, err = r.GetByID(ctx, "someone-else", a.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	b := model.NewAlert(userID, "second", nil)
	b.CreatedAt = a.CreatedAt.Add(time.Second)
	_, err = r.Save(ctx, b)
	require.NoError(t, err)

	list, err := r.ListByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Nil(t, list[0].Location)

	assert.ErrorIs(t, r.Update(ctx, model.NewAlert(userID, "ghost", nil)), repo.ErrNotFound)
}
