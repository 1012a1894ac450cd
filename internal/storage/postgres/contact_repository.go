package postgres

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"time"
)

// Ensure ContactRepository implements the interface
var _ repo.ContactRepository = (*ContactRepository)(nil)

const (
	insertContactSQL = `
		INSERT INTO contacts (id, user_id, name, phone, relationship, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, name, phone, relationship, created_at`

	listContactsSQL = `
		SELECT id, user_id, name, phone, relationship, created_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at, id`

	deleteContactSQL = `DELETE FROM contacts WHERE user_id = $1 AND id = $2`
)

// ContactRepository implements the domain.repository.ContactRepository interface
// using PostgreSQL as a backend.
type ContactRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewContactRepository creates a new instance of the ContactRepository.
func NewContactRepository(pool *pgxpool.Pool, logger *zerolog.Logger) *ContactRepository {
	return &ContactRepository{
		pool:   pool,
		logger: logger.With().Str("layer", "postgres_contact_repository").Logger(),
	}
}

// Create persists a new contact and returns the stored row.
func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	row := r.pool.QueryRow(ctx, insertContactSQL,
		pgtype.UUID{Bytes: c.ID, Valid: true}, c.UserID, c.Name, c.Phone, c.Relationship, c.CreatedAt)

	created, err := scanContact(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, repo.ErrDuplicateRecord
		}
		r.logger.Err(err).Str("user_id", c.UserID).Msg("cannot create contact")
		return nil, fmt.Errorf("postgres: CreateContact failed: %w", err)
	}
	return created, nil
}

// ListByUser returns the user's contacts in creation order.
func (r *ContactRepository) ListByUser(ctx context.Context, userID string) ([]*model.Contact, error) {
	rows, err := r.pool.Query(ctx, listContactsSQL, userID)
	if err != nil {
		r.logger.Err(err).Str("user_id", userID).Msg("cannot list contacts")
		return nil, fmt.Errorf("postgres: ListContacts failed: %w", err)
	}
	defer rows.Close()

	contacts := make([]*model.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: ListContacts failed: %w", err)
	}
	return contacts, nil
}

// Delete removes one of the user's contacts.
func (r *ContactRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteContactSQL, userID, pgtype.UUID{Bytes: id, Valid: true})
	if err != nil {
		r.logger.Err(err).Stringer("id", id).Msg("cannot delete contact")
		return fmt.Errorf("postgres: DeleteContact failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().Stringer("id", id).Str("user_id", userID).Msg("tried to delete non-existent contact")
		return repo.ErrNotFound
	}
	return nil
}

func scanContact(row pgx.Row) (*model.Contact, error) {
	var (
		id        pgtype.UUID
		c         model.Contact
		createdAt time.Time
	)
	if err := row.Scan(&id, &c.UserID, &c.Name, &c.Phone, &c.Relationship, &createdAt); err != nil {
		return nil, err
	}
	c.ID = id.Bytes
	c.CreatedAt = createdAt.UTC()
	return &c, nil
}
