package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is a serving team (worship, ushers, nursery, ...) within an organization.
type Team struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TeamMember links a member to a team, optionally with a position label.
type TeamMember struct {
	ID       uuid.UUID `json:"id"`
	TeamID   uuid.UUID `json:"team_id"`
	MemberID uuid.UUID `json:"member_id"`
	Position string    `json:"position,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}
