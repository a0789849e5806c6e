package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parishdesk/backend/internal/models"
)

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, organization_id, title, COALESCE(description,''), COALESCE(location,''),
	starts_at, ends_at, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.OrganizationID, &e.Title, &e.Description, &e.Location,
		&e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (organization_id, title, description, location, starts_at, ends_at)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), $5, $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.OrganizationID, e.Title, e.Description, e.Location,
		e.StartsAt, e.EndsAt).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event scoped to an organization.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 AND organization_id = $2`, id, orgID))
}

// List returns events of an organization, optionally limited to those ending
// after the given time (pass zero time for all).
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, after time.Time) ([]*models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
		WHERE organization_id = $1 AND ($2::timestamptz IS NULL OR ends_at > $2)
		ORDER BY starts_at`
	var afterArg *time.Time
	if !after.IsZero() {
		afterArg = &after
	}
	rows, err := r.pool.Query(ctx, q, orgID, afterArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update modifies an event.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events
		SET title = $3, description = NULLIF($4,''), location = NULLIF($5,''),
		    starts_at = $6, ends_at = $7, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, e.ID, e.OrganizationID, e.Title, e.Description, e.Location,
		e.StartsAt, e.EndsAt).Scan(&e.UpdatedAt)
}

// Delete removes an event.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM events WHERE id = $1 AND organization_id = $2`, id, orgID)
	return err
}
