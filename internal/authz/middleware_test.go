package authz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/parishdesk/backend/internal/auth"
	"github.com/parishdesk/backend/internal/models"
)

type fakeRoleSource struct {
	roles  []models.OrganizationRole
	assocs []models.UserOrganizationRole
	err    error
}

func (f *fakeRoleSource) RolesForOrg(_ context.Context, _ uuid.UUID) ([]models.OrganizationRole, error) {
	return f.roles, f.err
}

func (f *fakeRoleSource) AssignmentsForUser(_ context.Context, _ uuid.UUID) ([]models.UserOrganizationRole, error) {
	return f.assocs, f.err
}

func protectedRouter(userID uuid.UUID, src RoleSource, perm Permission) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/organizations/:orgId/thing",
		func(c *gin.Context) { c.Set(auth.ContextUserID, userID); c.Next() },
		LoadEvaluator(src),
		RequirePermission(perm),
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"org": OrgID(c).String()}) },
	)
	return r
}

func TestRequirePermissionAllowsGrantedUser(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()
	roleID := uuid.New()
	src := &fakeRoleSource{
		roles: []models.OrganizationRole{
			{ID: roleID, OrganizationID: orgID, Name: "Greeter", Permissions: []string{"members.view"}},
		},
		assocs: []models.UserOrganizationRole{
			{UserID: userID, RoleID: roleID, OrganizationID: orgID},
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/organizations/"+orgID.String()+"/thing", nil)
	protectedRouter(userID, src, MembersView).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), orgID.String())
}

func TestRequirePermissionDeniesWithoutGrant(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()
	roleID := uuid.New()
	src := &fakeRoleSource{
		roles: []models.OrganizationRole{
			{ID: roleID, OrganizationID: orgID, Name: "Greeter", Permissions: []string{"members.view"}},
		},
		assocs: []models.UserOrganizationRole{
			{UserID: userID, RoleID: roleID, OrganizationID: orgID},
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/organizations/"+orgID.String()+"/thing", nil)
	protectedRouter(userID, src, MembersDelete).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermissionAdminBypass(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()
	roleID := uuid.New()
	src := &fakeRoleSource{
		roles: []models.OrganizationRole{
			{ID: roleID, OrganizationID: orgID, Name: models.AdminRoleName, Permissions: []string{}},
		},
		assocs: []models.UserOrganizationRole{
			{UserID: userID, RoleID: roleID, OrganizationID: orgID},
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/organizations/"+orgID.String()+"/thing", nil)
	protectedRouter(userID, src, MembersDelete).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoadEvaluatorDeniesOnSourceError(t *testing.T) {
	orgID := uuid.New()
	src := &fakeRoleSource{err: errors.New("db down")}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/organizations/"+orgID.String()+"/thing", nil)
	protectedRouter(uuid.New(), src, MembersView).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoadEvaluatorRejectsBadOrgID(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/organizations/not-a-uuid/thing", nil)
	protectedRouter(uuid.New(), &fakeRoleSource{}, MembersView).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
