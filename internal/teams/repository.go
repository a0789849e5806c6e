package teams

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parishdesk/backend/internal/models"
)

// Repository handles team and team membership persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a teams repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a team.
func (r *Repository) Create(ctx context.Context, t *models.Team) error {
	const q = `INSERT INTO teams (organization_id, name, description)
		VALUES ($1, $2, NULLIF($3,'')) RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.OrganizationID, t.Name, t.Description).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a team scoped to an organization.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Team, error) {
	const q = `SELECT id, organization_id, name, COALESCE(description,''), created_at, updated_at
		FROM teams WHERE id = $1 AND organization_id = $2`
	var t models.Team
	err := r.pool.QueryRow(ctx, q, id, orgID).
		Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns teams of an organization.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]*models.Team, error) {
	const q = `SELECT id, organization_id, name, COALESCE(description,''), created_at, updated_at
		FROM teams WHERE organization_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// Update modifies a team.
func (r *Repository) Update(ctx context.Context, t *models.Team) error {
	const q = `UPDATE teams SET name = $3, description = NULLIF($4,''), updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, t.ID, t.OrganizationID, t.Name, t.Description).Scan(&t.UpdatedAt)
}

// Delete removes a team; its memberships cascade.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM teams WHERE id = $1 AND organization_id = $2`, id, orgID)
	return err
}

// AddMember links a member to a team. The member must belong to the same
// organization as the team.
func (r *Repository) AddMember(ctx context.Context, teamID, memberID uuid.UUID, position string) error {
	const q = `INSERT INTO team_members (team_id, member_id, position)
		SELECT t.id, m.id, NULLIF($3,'')
		FROM teams t INNER JOIN members m ON m.organization_id = t.organization_id
		WHERE t.id = $1 AND m.id = $2
		ON CONFLICT (team_id, member_id) DO UPDATE SET position = EXCLUDED.position`
	_, err := r.pool.Exec(ctx, q, teamID, memberID, position)
	return err
}

// RemoveMember unlinks a member from a team.
func (r *Repository) RemoveMember(ctx context.Context, teamID, memberID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND member_id = $2`, teamID, memberID)
	return err
}

// Roster is a team member with person details for display.
type Roster struct {
	ID        uuid.UUID `json:"id"`
	MemberID  uuid.UUID `json:"member_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Position  string    `json:"position,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// ListMembers returns the team roster.
func (r *Repository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]Roster, error) {
	const q = `SELECT tm.id, tm.member_id, m.first_name, m.last_name, COALESCE(tm.position,''), tm.added_at
		FROM team_members tm
		INNER JOIN members m ON m.id = tm.member_id
		WHERE tm.team_id = $1
		ORDER BY m.last_name, m.first_name`
	rows, err := r.pool.Query(ctx, q, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Roster
	for rows.Next() {
		var e Roster
		if err := rows.Scan(&e.ID, &e.MemberID, &e.FirstName, &e.LastName, &e.Position, &e.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
