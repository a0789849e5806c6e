package organizations

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parishdesk/backend/internal/models"
)

// Repository handles organization persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateWithAdmin creates an organization, seeds its Admin role with the full
// permission catalog, and assigns the creator to it atomically, so no
// organization can exist without an administrator.
func (r *Repository) CreateWithAdmin(ctx context.Context, org *models.Organization, creatorID uuid.UUID, adminPerms []string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertOrg = `INSERT INTO organizations (name, slug, address, phone)
			VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''))
			RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insertOrg, org.Name, org.Slug, org.Address, org.Phone).
			Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return err
		}

		const insertRole = `INSERT INTO organization_roles (organization_id, name, permissions)
			VALUES ($1, $2, $3) RETURNING id`
		var roleID uuid.UUID
		if err := tx.QueryRow(ctx, insertRole, org.ID, models.AdminRoleName, adminPerms).Scan(&roleID); err != nil {
			return err
		}

		const insertAssoc = `INSERT INTO user_organization_roles (user_id, role_id, organization_id)
			VALUES ($1, $2, $3)`
		_, err := tx.Exec(ctx, insertAssoc, creatorID, roleID, org.ID)
		return err
	})
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, slug, COALESCE(address,''), COALESCE(phone,''), created_at, updated_at
		FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&org.ID, &org.Name, &org.Slug, &org.Address, &org.Phone, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetBySlug returns an organization by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	const q = `SELECT id, name, slug, COALESCE(address,''), COALESCE(phone,''), created_at, updated_at
		FROM organizations WHERE slug = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, slug).
		Scan(&org.ID, &org.Name, &org.Slug, &org.Address, &org.Phone, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Update modifies an organization's profile fields.
func (r *Repository) Update(ctx context.Context, org *models.Organization) error {
	const q = `UPDATE organizations
		SET name = $2, address = NULLIF($3,''), phone = NULLIF($4,''), updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, org.ID, org.Name, org.Address, org.Phone).Scan(&org.UpdatedAt)
}

// Delete removes an organization and, via cascades, everything scoped to it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return err
}

// ListForUser returns organizations where the user holds at least one role.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	const q = `SELECT DISTINCT o.id, o.name, o.slug, COALESCE(o.address,''), COALESCE(o.phone,''), o.created_at, o.updated_at
		FROM organizations o
		INNER JOIN user_organization_roles uor ON uor.organization_id = o.id
		WHERE uor.user_id = $1
		ORDER BY o.name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.Address, &o.Phone, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
