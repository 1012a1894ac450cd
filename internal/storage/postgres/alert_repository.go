package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"time"
)

// Ensure AlertRepository implements the interface
var _ repo.AlertRepository = (*AlertRepository)(nil)

const (
	alertColumns = `id, user_id, message, latitude, longitude, status, results, created_at, updated_at`

	insertAlertSQL = `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + alertColumns

	updateAlertSQL = `
		UPDATE alerts
		SET status = $2, results = $3, updated_at = $4
		WHERE id = $1`

	getAlertSQL = `SELECT ` + alertColumns + ` FROM alerts WHERE user_id = $1 AND id = $2`

	listAlertsSQL = `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`
)

// resultRow is the JSONB shape of a stored dispatch result.
type resultRow struct {
	Contact string `json:"contact"`
	Status  string `json:"status"`
	SID     string `json:"sid,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AlertRepository stores alert records in PostgreSQL.
type AlertRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAlertRepository creates a new instance of the AlertRepository.
func NewAlertRepository(pool *pgxpool.Pool, logger *zerolog.Logger) *AlertRepository {
	return &AlertRepository{
		pool:   pool,
		logger: logger.With().Str("layer", "postgres_alert_repository").Logger(),
	}
}

// Save persists a newly triggered alert.
func (r *AlertRepository) Save(ctx context.Context, a *model.Alert) (*model.Alert, error) {
	results, err := encodeResults(a.Results)
	if err != nil {
		return nil, err
	}
	lat, lng := toDBLocation(a.Location)

	saved, err := scanAlert(r.pool.QueryRow(ctx, insertAlertSQL,
		pgtype.UUID{Bytes: a.ID, Valid: true}, a.UserID, a.Message, lat, lng,
		string(a.Status), results, a.CreatedAt, a.UpdatedAt))
	if err != nil {
		r.logger.Err(err).Stringer("id", a.ID).Msg("cannot create alert")
		return nil, fmt.Errorf("postgres: CreateAlert failed: %w", err)
	}
	return saved, nil
}

// Update writes the status and dispatch results of an alert.
func (r *AlertRepository) Update(ctx context.Context, a *model.Alert) error {
	results, err := encodeResults(a.Results)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, updateAlertSQL,
		pgtype.UUID{Bytes: a.ID, Valid: true}, string(a.Status), results, a.UpdatedAt)
	if err != nil {
		r.logger.Err(err).Stringer("id", a.ID).Msg("cannot update alert")
		return fmt.Errorf("postgres: UpdateAlert failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().Stringer("id", a.ID).Msg("tried to update non-existent alert")
		return repo.ErrNotFound
	}
	return nil
}

// GetByID retrieves one of the user's alerts.
func (r *AlertRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*model.Alert, error) {
	a, err := scanAlert(r.pool.QueryRow(ctx, getAlertSQL, userID, pgtype.UUID{Bytes: id, Valid: true}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		r.logger.Err(err).Stringer("id", id).Msg("cannot get alert")
		return nil, fmt.Errorf("postgres: GetAlert failed: %w", err)
	}
	return a, nil
}

// ListByUser returns the user's most recent alerts, newest first.
func (r *AlertRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Alert, error) {
	rows, err := r.pool.Query(ctx, listAlertsSQL, userID, limit)
	if err != nil {
		r.logger.Err(err).Str("user_id", userID).Msg("cannot list alerts")
		return nil, fmt.Errorf("postgres: ListAlerts failed: %w", err)
	}
	defer rows.Close()

	alerts := make([]*model.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: ListAlerts failed: %w", err)
	}
	return alerts, nil
}

// === Mapper Functions ===

func toDBLocation(l *model.Location) (pgtype.Float8, pgtype.Float8) {
	if l == nil {
		return pgtype.Float8{}, pgtype.Float8{}
	}
	return pgtype.Float8{Float64: l.Lat, Valid: true}, pgtype.Float8{Float64: l.Lng, Valid: true}
}

func encodeResults(results []model.DispatchResult) ([]byte, error) {
	rows := make([]resultRow, len(results))
	for i, r := range results {
		rows[i] = resultRow{Contact: r.Contact, Status: string(r.Status), SID: r.SID, Error: r.Error}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode dispatch results: %w", err)
	}
	return data, nil
}

func decodeResults(data []byte) ([]model.DispatchResult, error) {
	var rows []resultRow
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("postgres: decode dispatch results: %w", err)
		}
	}
	results := make([]model.DispatchResult, len(rows))
	for i, r := range rows {
		results[i] = model.DispatchResult{Contact: r.Contact, Status: model.DispatchStatus(r.Status), SID: r.SID, Error: r.Error}
	}
	return results, nil
}

func scanAlert(row pgx.Row) (*model.Alert, error) {
	var (
		id       pgtype.UUID
		a        model.Alert
		lat, lng pgtype.Float8
		status   string
		results  []byte
		created  time.Time
		updated  time.Time
	)
	if err := row.Scan(&id, &a.UserID, &a.Message, &lat, &lng, &status, &results, &created, &updated); err != nil {
		return nil, err
	}

	decoded, err := decodeResults(results)
	if err != nil {
		return nil, err
	}

	a.ID = id.Bytes
	a.Status = model.AlertStatus(status)
	a.Results = decoded
	a.CreatedAt = created.UTC()
	a.UpdatedAt = updated.UTC()
	if lat.Valid && lng.Valid {
		a.Location = &model.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &a, nil
}
