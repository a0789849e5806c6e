package roles

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parishdesk/backend/internal/authz"
	"github.com/parishdesk/backend/internal/models"
	"github.com/parishdesk/backend/pkg/response"
)

// Handler handles role HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a roles handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// RoleRequest is the body for creating or updating a role.
type RoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

// AssignRequest is the body for POST /organizations/:orgId/roles/:id/assignments.
type AssignRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// validatePermissions checks every permission against the catalog. The
// evaluator itself never validates; this is the one place invalid strings are
// kept out of the system.
func validatePermissions(perms []string) (bad []string) {
	for _, p := range perms {
		if !authz.Permission(p).Valid() {
			bad = append(bad, p)
		}
	}
	return bad
}

// List handles GET /organizations/:orgId/roles.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.RolesForOrg(c.Request.Context(), authz.OrgID(c))
	if err != nil {
		response.Internal(c, "failed to load roles")
		return
	}
	response.OK(c, list)
}

// Create handles POST /organizations/:orgId/roles.
func (h *Handler) Create(c *gin.Context) {
	var body RoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	if bad := validatePermissions(body.Permissions); len(bad) > 0 {
		response.BadRequest(c, "unknown permissions: "+strings.Join(bad, ", "))
		return
	}
	role := &models.OrganizationRole{
		OrganizationID: authz.OrgID(c),
		Name:           strings.TrimSpace(body.Name),
		Permissions:    body.Permissions,
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	if err := h.repo.Create(c.Request.Context(), role); err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			response.Conflict(c, "A role with this name already exists")
			return
		}
		h.logger.Error("create role", zap.Error(err))
		response.Internal(c, "failed to create role")
		return
	}
	response.Created(c, role)
}

// Update handles PATCH /organizations/:orgId/roles/:id.
func (h *Handler) Update(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}
	var body RoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	if bad := validatePermissions(body.Permissions); len(bad) > 0 {
		response.BadRequest(c, "unknown permissions: "+strings.Join(bad, ", "))
		return
	}
	role := &models.OrganizationRole{
		ID:             roleID,
		OrganizationID: authz.OrgID(c),
		Name:           strings.TrimSpace(body.Name),
		Permissions:    body.Permissions,
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	if err := h.repo.Update(c.Request.Context(), role); err != nil {
		response.NotFound(c, "role not found")
		return
	}
	response.OK(c, role)
}

// Delete handles DELETE /organizations/:orgId/roles/:id.
func (h *Handler) Delete(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), authz.OrgID(c), roleID); err != nil {
		response.Internal(c, "failed to delete role")
		return
	}
	response.NoContent(c)
}

// Assign handles POST /organizations/:orgId/roles/:id/assignments.
func (h *Handler) Assign(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}
	var body AssignRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id required")
		return
	}
	role, err := h.repo.GetByID(c.Request.Context(), roleID)
	if err != nil || role.OrganizationID != authz.OrgID(c) {
		response.NotFound(c, "role not found")
		return
	}
	if err := h.repo.Assign(c.Request.Context(), body.UserID, roleID); err != nil {
		h.logger.Error("assign role", zap.Error(err))
		response.Internal(c, "failed to assign role")
		return
	}
	response.NoContent(c)
}

// Unassign handles DELETE /organizations/:orgId/roles/:id/assignments/:userId.
func (h *Handler) Unassign(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.Unassign(c.Request.Context(), userID, roleID); err != nil {
		response.Internal(c, "failed to unassign role")
		return
	}
	response.NoContent(c)
}

// ListAssignments handles GET /organizations/:orgId/assignments.
func (h *Handler) ListAssignments(c *gin.Context) {
	list, err := h.repo.AssignmentsForOrg(c.Request.Context(), authz.OrgID(c))
	if err != nil {
		response.Internal(c, "failed to load assignments")
		return
	}
	response.OK(c, list)
}
