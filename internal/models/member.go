package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a person record scoped to an organization. Members may or may not
// have a platform user account; UserID links the two when they do.
type Member struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	PhotoKey       string     `json:"photo_key,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FullName returns first and last name joined for display and messaging.
func (m *Member) FullName() string {
	if m.FirstName == "" {
		return m.LastName
	}
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}
