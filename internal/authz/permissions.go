// Package authz evaluates organization-scoped permissions. The evaluator is a
// pure function over records the caller has already loaded: it performs no
// I/O and every missing or inconsistent input denies rather than grants.
package authz

// Permission is a "category.action" token identifying one allowed operation.
// Roles store permissions as raw strings; the evaluator compares for exact
// equality only, with no wildcard or prefix semantics.
type Permission string

// Permission catalog. Roles are validated against this set at creation time;
// the evaluator itself accepts any string and simply fails to match unknown ones.
const (
	MembersView    Permission = "members.view"
	MembersCreate  Permission = "members.create"
	MembersEdit    Permission = "members.edit"
	MembersDelete  Permission = "members.delete"
	MembersMessage Permission = "members.message"
	MembersAssign  Permission = "members.assign"

	TeamsView   Permission = "teams.view"
	TeamsCreate Permission = "teams.create"
	TeamsEdit   Permission = "teams.edit"
	TeamsDelete Permission = "teams.delete"
	TeamsManage Permission = "teams.manage"

	RolesView   Permission = "roles.view"
	RolesCreate Permission = "roles.create"
	RolesEdit   Permission = "roles.edit"
	RolesDelete Permission = "roles.delete"

	EventsView   Permission = "events.view"
	EventsCreate Permission = "events.create"
	EventsEdit   Permission = "events.edit"
	EventsDelete Permission = "events.delete"

	MissionsView   Permission = "missions.view"
	MissionsCreate Permission = "missions.create"
	MissionsEdit   Permission = "missions.edit"
	MissionsDelete Permission = "missions.delete"

	OrganizationView               Permission = "organization.view"
	OrganizationEdit               Permission = "organization.edit"
	OrganizationDelete             Permission = "organization.delete"
	OrganizationManageAssociations Permission = "organization.manageAssociations"

	SettingsView Permission = "settings.view"
	SettingsEdit Permission = "settings.edit"

	ChildcareCheckin        Permission = "childcare.checkin"
	ChildcareViewRooms      Permission = "childcare.viewRooms"
	ChildcareAssignChildren Permission = "childcare.assignChildren"
	ChildcareViewReports    Permission = "childcare.viewReports"
	ChildcareCreateRooms    Permission = "childcare.createRooms"
	ChildcareEditRooms      Permission = "childcare.editRooms"
	ChildcareDeleteRooms    Permission = "childcare.deleteRooms"
)

// All is the closed catalog of valid permissions.
var All = []Permission{
	MembersView, MembersCreate, MembersEdit, MembersDelete, MembersMessage, MembersAssign,
	TeamsView, TeamsCreate, TeamsEdit, TeamsDelete, TeamsManage,
	RolesView, RolesCreate, RolesEdit, RolesDelete,
	EventsView, EventsCreate, EventsEdit, EventsDelete,
	MissionsView, MissionsCreate, MissionsEdit, MissionsDelete,
	OrganizationView, OrganizationEdit, OrganizationDelete, OrganizationManageAssociations,
	SettingsView, SettingsEdit,
	ChildcareCheckin, ChildcareViewRooms, ChildcareAssignChildren, ChildcareViewReports,
	ChildcareCreateRooms, ChildcareEditRooms, ChildcareDeleteRooms,
}

var catalog = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(All))
	for _, p := range All {
		m[p] = struct{}{}
	}
	return m
}()

// Valid reports whether p is in the catalog. Used when creating or updating
// roles; the evaluator does not call this.
func (p Permission) Valid() bool {
	_, ok := catalog[p]
	return ok
}

// AllStrings returns the catalog as plain strings, e.g. for seeding the Admin role.
func AllStrings() []string {
	out := make([]string, len(All))
	for i, p := range All {
		out[i] = string(p)
	}
	return out
}
