package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminRoleName is the role name that grants implicit full authority in an
// organization. The comparison is case-sensitive: "admin" does not qualify.
const AdminRoleName = "Admin"

// Organization represents a tenant (a single church) in the multi-tenant model.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrganizationRole is a named bundle of permission strings scoped to one
// organization.
type OrganizationRole struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Permissions    []string  `json:"permissions"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserOrganizationRole links a user to a role within an organization. The
// organization id is denormalized onto the association; the authorization
// evaluator re-checks it against the role's organization at evaluation time.
type UserOrganizationRole struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	RoleID         uuid.UUID `json:"role_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
}
