package checkin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parishdesk/backend/internal/models"
)

// Repository handles room and check-in persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a check-in repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateRoom inserts a room.
func (r *Repository) CreateRoom(ctx context.Context, room *models.Room) error {
	const q = `INSERT INTO rooms (organization_id, name, min_age_months, max_age_months, capacity)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, room.OrganizationID, room.Name,
		room.MinAgeMonths, room.MaxAgeMonths, room.Capacity).
		Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
}

// UpdateRoom modifies a room's configuration.
func (r *Repository) UpdateRoom(ctx context.Context, room *models.Room) error {
	const q = `UPDATE rooms
		SET name = $3, min_age_months = $4, max_age_months = $5, capacity = $6, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, room.ID, room.OrganizationID, room.Name,
		room.MinAgeMonths, room.MaxAgeMonths, room.Capacity).Scan(&room.UpdatedAt)
}

// DeleteRoom removes a room and, via cascade, its check-in history.
func (r *Repository) DeleteRoom(ctx context.Context, orgID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM rooms WHERE id = $1 AND organization_id = $2`, id, orgID)
	return err
}

// GetRoom returns one room with its live occupancy.
func (r *Repository) GetRoom(ctx context.Context, orgID, id uuid.UUID) (*models.Room, error) {
	const q = `SELECT r.id, r.organization_id, r.name, r.min_age_months, r.max_age_months, r.capacity,
		(SELECT COUNT(*) FROM checkins c WHERE c.room_id = r.id AND c.checked_out_at IS NULL),
		r.created_at, r.updated_at
		FROM rooms r WHERE r.id = $1 AND r.organization_id = $2`
	var room models.Room
	err := r.pool.QueryRow(ctx, q, id, orgID).Scan(&room.ID, &room.OrganizationID, &room.Name,
		&room.MinAgeMonths, &room.MaxAgeMonths, &room.Capacity, &room.CurrentCount,
		&room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms returns an organization's rooms with live occupancy, in creation
// order. The ordering matters: the assignment heuristic breaks exact ties by
// input position.
func (r *Repository) ListRooms(ctx context.Context, orgID uuid.UUID) ([]*models.Room, error) {
	const q = `SELECT r.id, r.organization_id, r.name, r.min_age_months, r.max_age_months, r.capacity,
		(SELECT COUNT(*) FROM checkins c WHERE c.room_id = r.id AND c.checked_out_at IS NULL),
		r.created_at, r.updated_at
		FROM rooms r WHERE r.organization_id = $1
		ORDER BY r.created_at, r.id`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.OrganizationID, &room.Name,
			&room.MinAgeMonths, &room.MaxAgeMonths, &room.Capacity, &room.CurrentCount,
			&room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &room)
	}
	return list, rows.Err()
}

// OpenCheckInForChild returns the child's open check-in, or nil.
func (r *Repository) OpenCheckInForChild(ctx context.Context, orgID, childID uuid.UUID) (*models.CheckIn, error) {
	const q = `SELECT id, organization_id, child_id, room_id, checked_in_by, checked_in_at, checked_out_at
		FROM checkins WHERE organization_id = $1 AND child_id = $2 AND checked_out_at IS NULL`
	var ci models.CheckIn
	err := r.pool.QueryRow(ctx, q, orgID, childID).Scan(&ci.ID, &ci.OrganizationID, &ci.ChildID,
		&ci.RoomID, &ci.CheckedInBy, &ci.CheckedInAt, &ci.CheckedOutAt)
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

// CreateCheckIn inserts a check-in row. No capacity is reserved here; the
// room recommendation and this insert are separate steps by design.
func (r *Repository) CreateCheckIn(ctx context.Context, ci *models.CheckIn) error {
	const q = `INSERT INTO checkins (organization_id, child_id, room_id, checked_in_by)
		VALUES ($1, $2, $3, $4) RETURNING id, checked_in_at`
	return r.pool.QueryRow(ctx, q, ci.OrganizationID, ci.ChildID, ci.RoomID, ci.CheckedInBy).
		Scan(&ci.ID, &ci.CheckedInAt)
}

// CheckOut closes an open check-in. Returns the closed row.
func (r *Repository) CheckOut(ctx context.Context, orgID, checkInID uuid.UUID) (*models.CheckIn, error) {
	const q = `UPDATE checkins SET checked_out_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND checked_out_at IS NULL
		RETURNING id, organization_id, child_id, room_id, checked_in_by, checked_in_at, checked_out_at`
	var ci models.CheckIn
	err := r.pool.QueryRow(ctx, q, checkInID, orgID).Scan(&ci.ID, &ci.OrganizationID, &ci.ChildID,
		&ci.RoomID, &ci.CheckedInBy, &ci.CheckedInAt, &ci.CheckedOutAt)
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

// RoomAttendance is one check-in row with child details for room reports.
type RoomAttendance struct {
	CheckInID    uuid.UUID  `json:"checkin_id"`
	ChildID      uuid.UUID  `json:"child_id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Allergies    string     `json:"allergies,omitempty"`
	SpecialNeeds string     `json:"special_needs,omitempty"`
	CheckedInAt  time.Time  `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
}

// RoomAttendanceSince returns a room's check-ins since the given time,
// including closed ones, newest first.
func (r *Repository) RoomAttendanceSince(ctx context.Context, orgID, roomID uuid.UUID, since time.Time) ([]RoomAttendance, error) {
	const q = `SELECT c.id, c.child_id, ch.first_name, ch.last_name,
		COALESCE(ch.allergies,''), COALESCE(ch.special_needs,''), c.checked_in_at, c.checked_out_at
		FROM checkins c
		INNER JOIN children ch ON ch.id = c.child_id
		WHERE c.organization_id = $1 AND c.room_id = $2 AND c.checked_in_at >= $3
		ORDER BY c.checked_in_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID, roomID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []RoomAttendance
	for rows.Next() {
		var a RoomAttendance
		if err := rows.Scan(&a.CheckInID, &a.ChildID, &a.FirstName, &a.LastName,
			&a.Allergies, &a.SpecialNeeds, &a.CheckedInAt, &a.CheckedOutAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
