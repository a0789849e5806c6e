package members

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parishdesk/backend/internal/models"
)

// Repository handles member persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a members repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const memberColumns = `id, organization_id, user_id, first_name, last_name,
	COALESCE(email,''), COALESCE(phone,''), COALESCE(photo_key,''), COALESCE(notes,''),
	created_at, updated_at`

func scanMember(row interface{ Scan(...any) error }) (*models.Member, error) {
	var m models.Member
	err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.FirstName, &m.LastName,
		&m.Email, &m.Phone, &m.PhotoKey, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a member.
func (r *Repository) Create(ctx context.Context, m *models.Member) error {
	const q = `INSERT INTO members (organization_id, user_id, first_name, last_name, email, phone, notes)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), NULLIF($7,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.OrganizationID, m.UserID, m.FirstName, m.LastName,
		m.Email, m.Phone, m.Notes).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// GetByID returns a member scoped to an organization.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Member, error) {
	return scanMember(r.pool.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1 AND organization_id = $2`, id, orgID))
}

// List returns members of an organization.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]*models.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM members WHERE organization_id = $1 ORDER BY last_name, first_name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetByIDs returns members matching the given ids within an organization.
// Used by messaging to resolve recipients.
func (r *Repository) GetByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]*models.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM members WHERE organization_id = $1 AND id = ANY($2)`, orgID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Update modifies a member's profile fields.
func (r *Repository) Update(ctx context.Context, m *models.Member) error {
	const q = `UPDATE members
		SET first_name = $3, last_name = $4, email = NULLIF($5,''), phone = NULLIF($6,''),
		    notes = NULLIF($7,''), updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, m.ID, m.OrganizationID, m.FirstName, m.LastName,
		m.Email, m.Phone, m.Notes).Scan(&m.UpdatedAt)
}

// SetPhotoKey records the S3 object key of the member's photo.
func (r *Repository) SetPhotoKey(ctx context.Context, orgID, id uuid.UUID, key string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE members SET photo_key = NULLIF($3,''), updated_at = NOW()
		 WHERE id = $1 AND organization_id = $2`, id, orgID, key)
	return err
}

// Delete removes a member.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM members WHERE id = $1 AND organization_id = $2`, id, orgID)
	return err
}
