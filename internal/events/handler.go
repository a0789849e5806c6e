package events

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parishdesk/backend/internal/authz"
	"github.com/parishdesk/backend/internal/models"
	"github.com/parishdesk/backend/pkg/response"
)

// Handler handles event HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// EventRequest is the body for creating or updating an event.
type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
}

func (r *EventRequest) validate() string {
	if !r.EndsAt.After(r.StartsAt) {
		return "ends_at must be after starts_at"
	}
	return ""
}

// List handles GET /organizations/:orgId/events. With ?upcoming=true only
// events that have not yet ended are returned.
func (h *Handler) List(c *gin.Context) {
	var after time.Time
	if c.Query("upcoming") == "true" {
		after = time.Now()
	}
	list, err := h.repo.List(c.Request.Context(), authz.OrgID(c), after)
	if err != nil {
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, list)
}

// Get handles GET /organizations/:orgId/events/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), authz.OrgID(c), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Create handles POST /organizations/:orgId/events.
func (h *Handler) Create(c *gin.Context) {
	var body EventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "title, starts_at and ends_at required")
		return
	}
	if msg := body.validate(); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	e := &models.Event{
		OrganizationID: authz.OrgID(c),
		Title:          strings.TrimSpace(body.Title),
		Description:    body.Description,
		Location:       body.Location,
		StartsAt:       body.StartsAt,
		EndsAt:         body.EndsAt,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create event", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// Update handles PATCH /organizations/:orgId/events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body EventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "title, starts_at and ends_at required")
		return
	}
	if msg := body.validate(); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	e := &models.Event{
		ID:             id,
		OrganizationID: authz.OrgID(c),
		Title:          strings.TrimSpace(body.Title),
		Description:    body.Description,
		Location:       body.Location,
		StartsAt:       body.StartsAt,
		EndsAt:         body.EndsAt,
	}
	if err := h.repo.Update(c.Request.Context(), e); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /organizations/:orgId/events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), authz.OrgID(c), id); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}
