package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckIn records a child's presence in a room. CheckedOutAt is nil while the
// child is still checked in; a room's occupancy is the count of its open rows.
type CheckIn struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	ChildID        uuid.UUID  `json:"child_id"`
	RoomID         uuid.UUID  `json:"room_id"`
	CheckedInBy    uuid.UUID  `json:"checked_in_by"`
	CheckedInAt    time.Time  `json:"checked_in_at"`
	CheckedOutAt   *time.Time `json:"checked_out_at,omitempty"`
}
