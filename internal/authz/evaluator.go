package authz

import (
	"github.com/google/uuid"

	"github.com/parishdesk/backend/internal/models"
)

// Evaluator answers "may this user perform X in organization Y" over a
// snapshot of role and association records. It never returns an error: absent
// users, empty role lists, orphaned associations and cross-organization
// mismatches all evaluate to false.
type Evaluator struct {
	userID uuid.UUID
	roles  map[uuid.UUID]*models.OrganizationRole
	assocs []models.UserOrganizationRole
}

// NewEvaluator builds an evaluator for one user. The role and association
// slices need not be scoped to an organization; filtering happens per check.
func NewEvaluator(userID uuid.UUID, roles []models.OrganizationRole, assocs []models.UserOrganizationRole) *Evaluator {
	byID := make(map[uuid.UUID]*models.OrganizationRole, len(roles))
	for i := range roles {
		byID[roles[i].ID] = &roles[i]
	}
	return &Evaluator{userID: userID, roles: byID, assocs: assocs}
}

// resolvedRoles returns the roles this user holds in the organization.
// Associations referencing unknown roles contribute nothing, and a role whose
// own organization differs from the association's is rejected: the link table
// alone does not prove the role belongs to the organization being checked.
func (e *Evaluator) resolvedRoles(orgID uuid.UUID) []*models.OrganizationRole {
	var out []*models.OrganizationRole
	for _, a := range e.assocs {
		if a.UserID != e.userID || a.OrganizationID != orgID {
			continue
		}
		role, ok := e.roles[a.RoleID]
		if !ok || role.OrganizationID != orgID {
			continue
		}
		out = append(out, role)
	}
	return out
}

// HasPermission reports whether any of the user's roles in the organization
// contains the exact permission string. There is no wildcard or prefix match.
func (e *Evaluator) HasPermission(perm Permission, orgID uuid.UUID) bool {
	for _, role := range e.resolvedRoles(orgID) {
		for _, p := range role.Permissions {
			if p == string(perm) {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission reports whether HasPermission holds for at least one entry.
// An empty slice yields false.
func (e *Evaluator) HasAnyPermission(perms []Permission, orgID uuid.UUID) bool {
	for _, p := range perms {
		if e.HasPermission(p, orgID) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether HasPermission holds for every entry.
// An empty slice yields true.
func (e *Evaluator) HasAllPermissions(perms []Permission, orgID uuid.UUID) bool {
	for _, p := range perms {
		if !e.HasPermission(p, orgID) {
			return false
		}
	}
	return true
}

// IsAdmin reports whether the user holds a role named exactly "Admin" in the
// organization, independent of that role's permission set.
func (e *Evaluator) IsAdmin(orgID uuid.UUID) bool {
	for _, role := range e.resolvedRoles(orgID) {
		if role.Name == models.AdminRoleName {
			return true
		}
	}
	return false
}

// Named wrappers for common checks, for call-site readability.

func (e *Evaluator) CanViewMembers(orgID uuid.UUID) bool    { return e.HasPermission(MembersView, orgID) }
func (e *Evaluator) CanAddMembers(orgID uuid.UUID) bool     { return e.HasPermission(MembersCreate, orgID) }
func (e *Evaluator) CanEditMembers(orgID uuid.UUID) bool    { return e.HasPermission(MembersEdit, orgID) }
func (e *Evaluator) CanDeleteMembers(orgID uuid.UUID) bool  { return e.HasPermission(MembersDelete, orgID) }
func (e *Evaluator) CanMessageMembers(orgID uuid.UUID) bool { return e.HasPermission(MembersMessage, orgID) }
func (e *Evaluator) CanAssignMembers(orgID uuid.UUID) bool  { return e.HasPermission(MembersAssign, orgID) }

func (e *Evaluator) CanViewTeams(orgID uuid.UUID) bool   { return e.HasPermission(TeamsView, orgID) }
func (e *Evaluator) CanManageTeams(orgID uuid.UUID) bool { return e.HasPermission(TeamsManage, orgID) }

func (e *Evaluator) CanViewEvents(orgID uuid.UUID) bool   { return e.HasPermission(EventsView, orgID) }
func (e *Evaluator) CanCreateEvents(orgID uuid.UUID) bool { return e.HasPermission(EventsCreate, orgID) }

func (e *Evaluator) CanCheckInChildren(orgID uuid.UUID) bool {
	return e.HasPermission(ChildcareCheckin, orgID)
}

func (e *Evaluator) CanViewRooms(orgID uuid.UUID) bool { return e.HasPermission(ChildcareViewRooms, orgID) }
