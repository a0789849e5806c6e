package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/parishdesk/backend/internal/models"
)

func link(userID uuid.UUID, role models.OrganizationRole) models.UserOrganizationRole {
	return models.UserOrganizationRole{
		ID:             uuid.New(),
		UserID:         userID,
		RoleID:         role.ID,
		OrganizationID: role.OrganizationID,
	}
}

func newRole(orgID uuid.UUID, name string, perms ...string) models.OrganizationRole {
	return models.OrganizationRole{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		Permissions:    perms,
	}
}

func TestEvaluator_DenyByDefault(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	e := NewEvaluator(userID, nil, nil)

	for _, p := range All {
		assert.False(t, e.HasPermission(p, orgID), "no associations must deny %s", p)
	}
	assert.False(t, e.IsAdmin(orgID))
}

func TestEvaluator_HasPermission(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	role := newRole(orgID, "Greeter", "members.view", "events.view")
	e := NewEvaluator(userID, []models.OrganizationRole{role}, []models.UserOrganizationRole{link(userID, role)})

	assert.True(t, e.HasPermission(MembersView, orgID))
	assert.True(t, e.HasPermission(EventsView, orgID))
	assert.False(t, e.HasPermission(MembersEdit, orgID))
	assert.False(t, e.HasPermission(MembersView, uuid.New()), "different organization must deny")
}

func TestEvaluator_ExactMatchOnly(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	role := newRole(orgID, "Viewer", "members.view")
	e := NewEvaluator(userID, []models.OrganizationRole{role}, []models.UserOrganizationRole{link(userID, role)})

	assert.True(t, e.HasPermission("members.view", orgID))
	assert.False(t, e.HasPermission("members.viewAll", orgID), "prefix must not match")
	assert.False(t, e.HasPermission("members", orgID), "category alone must not match")
	assert.False(t, e.HasPermission("members.vie", orgID), "substring must not match")
}

func TestEvaluator_WildcardDoesNotExpand(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	role := newRole(orgID, "Star", "members.*")
	e := NewEvaluator(userID, []models.OrganizationRole{role}, []models.UserOrganizationRole{link(userID, role)})

	assert.False(t, e.HasPermission(MembersEdit, orgID), "a stored wildcard grants nothing")
	assert.True(t, e.HasPermission("members.*", orgID), "only the literal string matches itself")
}

func TestEvaluator_IsAdminCaseSensitive(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	lower := newRole(orgID, "admin")
	upper := newRole(orgID, "Admin")
	caps := newRole(orgID, "ADMIN")

	roles := []models.OrganizationRole{lower, upper, caps}

	e := NewEvaluator(userID, roles, []models.UserOrganizationRole{link(userID, lower)})
	assert.False(t, e.IsAdmin(orgID), `role "admin" must not count`)

	e = NewEvaluator(userID, roles, []models.UserOrganizationRole{link(userID, caps)})
	assert.False(t, e.IsAdmin(orgID), `role "ADMIN" must not count`)

	e = NewEvaluator(userID, roles, []models.UserOrganizationRole{link(userID, upper)})
	assert.True(t, e.IsAdmin(orgID))
	assert.False(t, e.IsAdmin(uuid.New()), "Admin in one organization grants nothing elsewhere")
}

func TestEvaluator_QuantifierAsymmetry(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	e := NewEvaluator(userID, nil, nil)

	assert.True(t, e.HasAllPermissions(nil, orgID), "all-of over empty list is vacuously true")
	assert.False(t, e.HasAnyPermission(nil, orgID), "any-of over empty list is vacuously false")
	assert.True(t, e.HasAllPermissions([]Permission{}, orgID))
	assert.False(t, e.HasAnyPermission([]Permission{}, orgID))
}

func TestEvaluator_AnyAndAll(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	role := newRole(orgID, "Coordinator", "teams.view", "teams.manage")
	e := NewEvaluator(userID, []models.OrganizationRole{role}, []models.UserOrganizationRole{link(userID, role)})

	assert.True(t, e.HasAnyPermission([]Permission{MembersDelete, TeamsView}, orgID))
	assert.False(t, e.HasAnyPermission([]Permission{MembersDelete, MembersEdit}, orgID))
	assert.True(t, e.HasAllPermissions([]Permission{TeamsView, TeamsManage}, orgID))
	assert.False(t, e.HasAllPermissions([]Permission{TeamsView, TeamsDelete}, orgID))
}

func TestEvaluator_OrphanedAssociation(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	// Association points at a role id absent from the role list.
	orphan := models.UserOrganizationRole{
		ID:             uuid.New(),
		UserID:         userID,
		RoleID:         uuid.New(),
		OrganizationID: orgID,
	}
	e := NewEvaluator(userID, nil, []models.UserOrganizationRole{orphan})

	assert.False(t, e.HasPermission(MembersView, orgID))
	assert.False(t, e.IsAdmin(orgID))
}

func TestEvaluator_CrossOrgRoleRejected(t *testing.T) {
	userID := uuid.New()
	orgA := uuid.New()
	orgB := uuid.New()
	// Role belongs to org B, but a corrupt association claims it in org A.
	role := newRole(orgB, "Admin", "members.view")
	bad := models.UserOrganizationRole{
		ID:             uuid.New(),
		UserID:         userID,
		RoleID:         role.ID,
		OrganizationID: orgA,
	}
	e := NewEvaluator(userID, []models.OrganizationRole{role}, []models.UserOrganizationRole{bad})

	assert.False(t, e.HasPermission(MembersView, orgA))
	assert.False(t, e.IsAdmin(orgA))
}

func TestEvaluator_OtherUsersAssociationsIgnored(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()
	orgID := uuid.New()
	role := newRole(orgID, "Admin", "members.view")
	e := NewEvaluator(userID, []models.OrganizationRole{role}, []models.UserOrganizationRole{link(otherID, role)})

	assert.False(t, e.HasPermission(MembersView, orgID))
	assert.False(t, e.IsAdmin(orgID))
}

func TestEvaluator_DerivedHelpers(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	role := newRole(orgID, "Staff",
		"members.view", "members.create", "members.message", "childcare.checkin")
	e := NewEvaluator(userID, []models.OrganizationRole{role}, []models.UserOrganizationRole{link(userID, role)})

	assert.True(t, e.CanViewMembers(orgID))
	assert.True(t, e.CanAddMembers(orgID))
	assert.True(t, e.CanMessageMembers(orgID))
	assert.True(t, e.CanCheckInChildren(orgID))
	assert.False(t, e.CanDeleteMembers(orgID))
	assert.False(t, e.CanViewRooms(orgID))
}

func TestPermission_Valid(t *testing.T) {
	assert.True(t, Permission("members.edit").Valid())
	assert.True(t, Permission("childcare.viewRooms").Valid())
	assert.False(t, Permission("members.viewAll").Valid())
	assert.False(t, Permission("members.*").Valid())
	assert.False(t, Permission("").Valid())
}
