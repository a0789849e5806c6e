package organizations

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parishdesk/backend/internal/auth"
	"github.com/parishdesk/backend/internal/authz"
	"github.com/parishdesk/backend/internal/models"
	"github.com/parishdesk/backend/pkg/response"
)

// Slug must be lowercase alphanumeric and hyphens only, 2-64 chars.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,63}$`)

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateOrganizationRequest is the body for POST /organizations.
type CreateOrganizationRequest struct {
	Name    string `json:"name" binding:"required"`
	Slug    string `json:"slug" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// UpdateOrganizationRequest is the body for PATCH /organizations/:orgId.
type UpdateOrganizationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Create handles POST /organizations. The creator receives the seeded Admin role.
func (h *Handler) Create(c *gin.Context) {
	userID := auth.MustUserID(c)
	var body CreateOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and slug required")
		return
	}
	body.Slug = strings.ToLower(strings.TrimSpace(body.Slug))
	if !slugRegex.MatchString(body.Slug) {
		response.BadRequest(c, "slug must be 2-64 chars, lowercase letters, numbers, hyphens only")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if len(body.Name) < 1 || len(body.Name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	org := &models.Organization{Name: body.Name, Slug: body.Slug, Address: body.Address, Phone: body.Phone}
	if err := h.repo.CreateWithAdmin(c.Request.Context(), org, userID, authz.AllStrings()); err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			response.Conflict(c, "An organization with this slug already exists")
			return
		}
		h.logger.Error("create organization", zap.Error(err))
		response.Internal(c, "failed to create organization")
		return
	}
	response.Created(c, org)
}

// ListMine handles GET /organizations. Returns orgs where the user holds a role.
func (h *Handler) ListMine(c *gin.Context) {
	userID := auth.MustUserID(c)
	orgs, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load organizations")
		return
	}
	response.OK(c, orgs)
}

// Get handles GET /organizations/:orgId.
func (h *Handler) Get(c *gin.Context) {
	org, err := h.repo.GetByID(c.Request.Context(), authz.OrgID(c))
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	response.OK(c, org)
}

// Update handles PATCH /organizations/:orgId.
func (h *Handler) Update(c *gin.Context) {
	var body UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	org := &models.Organization{
		ID:      authz.OrgID(c),
		Name:    strings.TrimSpace(body.Name),
		Address: body.Address,
		Phone:   body.Phone,
	}
	if err := h.repo.Update(c.Request.Context(), org); err != nil {
		response.Internal(c, "failed to update organization")
		return
	}
	response.OK(c, org)
}

// Delete handles DELETE /organizations/:orgId.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), authz.OrgID(c)); err != nil {
		response.Internal(c, "failed to delete organization")
		return
	}
	response.NoContent(c)
}
