package teams

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parishdesk/backend/internal/authz"
	"github.com/parishdesk/backend/internal/models"
	"github.com/parishdesk/backend/pkg/response"
)

// Handler handles team HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a teams handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// TeamRequest is the body for creating or updating a team.
type TeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// TeamMemberRequest is the body for POST /organizations/:orgId/teams/:id/members.
type TeamMemberRequest struct {
	MemberID uuid.UUID `json:"member_id" binding:"required"`
	Position string    `json:"position"`
}

// List handles GET /organizations/:orgId/teams.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), authz.OrgID(c))
	if err != nil {
		response.Internal(c, "failed to load teams")
		return
	}
	response.OK(c, list)
}

// Create handles POST /organizations/:orgId/teams.
func (h *Handler) Create(c *gin.Context) {
	var body TeamRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	t := &models.Team{
		OrganizationID: authz.OrgID(c),
		Name:           strings.TrimSpace(body.Name),
		Description:    body.Description,
	}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			response.Conflict(c, "A team with this name already exists")
			return
		}
		h.logger.Error("create team", zap.Error(err))
		response.Internal(c, "failed to create team")
		return
	}
	response.Created(c, t)
}

// Update handles PATCH /organizations/:orgId/teams/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	var body TeamRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	t := &models.Team{
		ID:             id,
		OrganizationID: authz.OrgID(c),
		Name:           strings.TrimSpace(body.Name),
		Description:    body.Description,
	}
	if err := h.repo.Update(c.Request.Context(), t); err != nil {
		response.NotFound(c, "team not found")
		return
	}
	response.OK(c, t)
}

// Delete handles DELETE /organizations/:orgId/teams/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), authz.OrgID(c), id); err != nil {
		response.Internal(c, "failed to delete team")
		return
	}
	response.NoContent(c)
}

// teamInOrg loads the team and verifies it belongs to the request's organization.
func (h *Handler) teamInOrg(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return uuid.Nil, false
	}
	if _, err := h.repo.GetByID(c.Request.Context(), authz.OrgID(c), id); err != nil {
		response.NotFound(c, "team not found")
		return uuid.Nil, false
	}
	return id, true
}

// ListMembers handles GET /organizations/:orgId/teams/:id/members.
func (h *Handler) ListMembers(c *gin.Context) {
	teamID, ok := h.teamInOrg(c)
	if !ok {
		return
	}
	roster, err := h.repo.ListMembers(c.Request.Context(), teamID)
	if err != nil {
		response.Internal(c, "failed to load team members")
		return
	}
	response.OK(c, roster)
}

// AddMember handles POST /organizations/:orgId/teams/:id/members.
func (h *Handler) AddMember(c *gin.Context) {
	teamID, ok := h.teamInOrg(c)
	if !ok {
		return
	}
	var body TeamMemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "member_id required")
		return
	}
	if err := h.repo.AddMember(c.Request.Context(), teamID, body.MemberID, body.Position); err != nil {
		h.logger.Error("add team member", zap.Error(err))
		response.Internal(c, "failed to add team member")
		return
	}
	response.NoContent(c)
}

// RemoveMember handles DELETE /organizations/:orgId/teams/:id/members/:memberId.
func (h *Handler) RemoveMember(c *gin.Context) {
	teamID, ok := h.teamInOrg(c)
	if !ok {
		return
	}
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}
	if err := h.repo.RemoveMember(c.Request.Context(), teamID, memberID); err != nil {
		response.Internal(c, "failed to remove team member")
		return
	}
	response.NoContent(c)
}
