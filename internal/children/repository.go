package children

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parishdesk/backend/internal/models"
)

// Repository handles child persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a children repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const childColumns = `id, organization_id, guardian_id, first_name, last_name, date_of_birth,
	COALESCE(allergies,''), COALESCE(special_needs,''), COALESCE(photo_key,''), created_at, updated_at`

func scanChild(row interface{ Scan(...any) error }) (*models.Child, error) {
	var ch models.Child
	err := row.Scan(&ch.ID, &ch.OrganizationID, &ch.GuardianID, &ch.FirstName, &ch.LastName,
		&ch.DateOfBirth, &ch.Allergies, &ch.SpecialNeeds, &ch.PhotoKey, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// Create inserts a child.
func (r *Repository) Create(ctx context.Context, ch *models.Child) error {
	const q = `INSERT INTO children (organization_id, guardian_id, first_name, last_name,
			date_of_birth, allergies, special_needs)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, ch.OrganizationID, ch.GuardianID, ch.FirstName, ch.LastName,
		ch.DateOfBirth, ch.Allergies, ch.SpecialNeeds).Scan(&ch.ID, &ch.CreatedAt, &ch.UpdatedAt)
}

// GetByID returns a child scoped to an organization.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Child, error) {
	return scanChild(r.pool.QueryRow(ctx,
		`SELECT `+childColumns+` FROM children WHERE id = $1 AND organization_id = $2`, id, orgID))
}

// List returns children of an organization.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]*models.Child, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+childColumns+` FROM children WHERE organization_id = $1 ORDER BY last_name, first_name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Child
	for rows.Next() {
		ch, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, ch)
	}
	return list, rows.Err()
}

// Update modifies a child's record.
func (r *Repository) Update(ctx context.Context, ch *models.Child) error {
	const q = `UPDATE children
		SET guardian_id = $3, first_name = $4, last_name = $5, date_of_birth = $6,
		    allergies = NULLIF($7,''), special_needs = NULLIF($8,''), updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, ch.ID, ch.OrganizationID, ch.GuardianID, ch.FirstName, ch.LastName,
		ch.DateOfBirth, ch.Allergies, ch.SpecialNeeds).Scan(&ch.UpdatedAt)
}

// SetPhotoKey records the S3 object key of the child's photo.
func (r *Repository) SetPhotoKey(ctx context.Context, orgID, id uuid.UUID, key string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE children SET photo_key = NULLIF($3,''), updated_at = NOW()
		 WHERE id = $1 AND organization_id = $2`, id, orgID, key)
	return err
}

// Delete removes a child.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM children WHERE id = $1 AND organization_id = $2`, id, orgID)
	return err
}
