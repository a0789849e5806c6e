package roles

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parishdesk/backend/internal/models"
)

// Repository handles organization role and role assignment persistence. It is
// also the record source for the authorization evaluator.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a roles repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RolesForOrg returns all roles of an organization.
func (r *Repository) RolesForOrg(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationRole, error) {
	const q = `SELECT id, organization_id, name, permissions, created_at, updated_at
		FROM organization_roles WHERE organization_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.OrganizationRole
	for rows.Next() {
		var role models.OrganizationRole
		if err := rows.Scan(&role.ID, &role.OrganizationID, &role.Name, &role.Permissions,
			&role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, role)
	}
	return list, rows.Err()
}

// AssignmentsForUser returns all of a user's role associations, across organizations.
func (r *Repository) AssignmentsForUser(ctx context.Context, userID uuid.UUID) ([]models.UserOrganizationRole, error) {
	const q = `SELECT id, user_id, role_id, organization_id, created_at
		FROM user_organization_roles WHERE user_id = $1`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserOrganizationRole
	for rows.Next() {
		var a models.UserOrganizationRole
		if err := rows.Scan(&a.ID, &a.UserID, &a.RoleID, &a.OrganizationID, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetByID returns a role by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationRole, error) {
	const q = `SELECT id, organization_id, name, permissions, created_at, updated_at
		FROM organization_roles WHERE id = $1`
	var role models.OrganizationRole
	err := r.pool.QueryRow(ctx, q, id).Scan(&role.ID, &role.OrganizationID, &role.Name,
		&role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Create inserts a role.
func (r *Repository) Create(ctx context.Context, role *models.OrganizationRole) error {
	const q = `INSERT INTO organization_roles (organization_id, name, permissions)
		VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, role.OrganizationID, role.Name, role.Permissions).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

// Update modifies a role's name and permission set.
func (r *Repository) Update(ctx context.Context, role *models.OrganizationRole) error {
	const q = `UPDATE organization_roles SET name = $3, permissions = $4, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, role.ID, role.OrganizationID, role.Name, role.Permissions).
		Scan(&role.UpdatedAt)
}

// Delete removes a role; its assignments cascade.
func (r *Repository) Delete(ctx context.Context, orgID, roleID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM organization_roles WHERE id = $1 AND organization_id = $2`, roleID, orgID)
	return err
}

// Assign links a user to a role. The role's organization id is copied onto
// the association from the role row itself, never from caller input.
func (r *Repository) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	const q = `INSERT INTO user_organization_roles (user_id, role_id, organization_id)
		SELECT $1, id, organization_id FROM organization_roles WHERE id = $2
		ON CONFLICT (user_id, role_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, userID, roleID)
	return err
}

// Unassign removes a user's role association.
func (r *Repository) Unassign(ctx context.Context, userID, roleID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_organization_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return err
}

// AssignmentsForOrg returns all role associations within an organization,
// joined with user details for display.
type Assignment struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	RoleID   uuid.UUID `json:"role_id"`
	RoleName string    `json:"role_name"`
}

func (r *Repository) AssignmentsForOrg(ctx context.Context, orgID uuid.UUID) ([]Assignment, error) {
	const q = `SELECT uor.id, uor.user_id, u.email, u.full_name, uor.role_id, orr.name
		FROM user_organization_roles uor
		INNER JOIN users u ON u.id = uor.user_id
		INNER JOIN organization_roles orr ON orr.id = uor.role_id
		WHERE uor.organization_id = $1
		ORDER BY u.full_name, orr.name`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Email, &a.FullName, &a.RoleID, &a.RoleName); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
