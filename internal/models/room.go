package models

import (
	"time"

	"github.com/google/uuid"
)

// Room is a childcare room with an age range in months and a capacity.
// CurrentCount is derived from open check-ins at read time; it is not a
// reservation and may exceed Capacity under concurrent check-in.
type Room struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	MinAgeMonths   int       `json:"min_age_months"`
	MaxAgeMonths   int       `json:"max_age_months"`
	Capacity       int       `json:"capacity"`
	CurrentCount   int       `json:"current_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AtCapacity reports whether the room is at or over its declared capacity.
func (r *Room) AtCapacity() bool {
	return r.CurrentCount >= r.Capacity
}
