package postgres

import (
	"context"
	"errors"
	"fmt"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"time"
)

// Ensure ProfileRepository implements the interface
var _ repo.ProfileRepository = (*ProfileRepository)(nil)

const (
	getProfileSQL = `
		SELECT user_id, display_name, alert_message, updated_at
		FROM profiles
		WHERE user_id = $1`

	upsertProfileSQL = `
		INSERT INTO profiles (user_id, display_name, alert_message, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    alert_message = EXCLUDED.alert_message,
		    updated_at = EXCLUDED.updated_at
		RETURNING user_id, display_name, alert_message, updated_at`
)

// ProfileRepository stores user profiles in PostgreSQL.
type ProfileRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProfileRepository creates a new instance of the ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool, logger *zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{
		pool:   pool,
		logger: logger.With().Str("layer", "postgres_profile_repository").Logger(),
	}
}

// Get retrieves the user's profile.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, getProfileSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		r.logger.Err(err).Str("user_id", userID).Msg("cannot get profile")
		return nil, fmt.Errorf("postgres: GetProfile failed: %w", err)
	}
	return p, nil
}

// Upsert creates or replaces the user's profile.
func (r *ProfileRepository) Upsert(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	saved, err := scanProfile(r.pool.QueryRow(ctx, upsertProfileSQL, p.UserID, p.DisplayName, p.AlertMessage, p.UpdatedAt))
	if err != nil {
		r.logger.Err(err).Str("user_id", p.UserID).Msg("cannot upsert profile")
		return nil, fmt.Errorf("postgres: UpsertProfile failed: %w", err)
	}
	return saved, nil
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var (
		p         model.Profile
		updatedAt time.Time
	)
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.AlertMessage, &updatedAt); err != nil {
		return nil, err
	}
	p.UpdatedAt = updatedAt.UTC()
	return &p, nil
}
