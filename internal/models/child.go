package models

import (
	"time"

	"github.com/google/uuid"
)

// Child is a child registered for check-in. DateOfBirth may be absent; a
// child without one can never be matched to a room.
type Child struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	GuardianID     *uuid.UUID `json:"guardian_id,omitempty"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Allergies      string     `json:"allergies,omitempty"`
	SpecialNeeds   string     `json:"special_needs,omitempty"`
	PhotoKey       string     `json:"photo_key,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
