package children

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parishdesk/backend/internal/authz"
	"github.com/parishdesk/backend/internal/models"
	"github.com/parishdesk/backend/pkg/response"
	"github.com/parishdesk/backend/pkg/storage"
)

// Handler handles child HTTP endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a children handler. s3 may be nil; photo endpoints then
// respond 503.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// ChildRequest is the body for creating or updating a child. DateOfBirth is
// optional; a child without one can be registered but never room-matched.
type ChildRequest struct {
	FirstName    string     `json:"first_name" binding:"required"`
	LastName     string     `json:"last_name"`
	GuardianID   *uuid.UUID `json:"guardian_id"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Allergies    string     `json:"allergies"`
	SpecialNeeds string     `json:"special_needs"`
}

// List handles GET /organizations/:orgId/children.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), authz.OrgID(c))
	if err != nil {
		response.Internal(c, "failed to load children")
		return
	}
	response.OK(c, list)
}

// Get handles GET /organizations/:orgId/children/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid child id")
		return
	}
	ch, err := h.repo.GetByID(c.Request.Context(), authz.OrgID(c), id)
	if err != nil {
		response.NotFound(c, "child not found")
		return
	}
	response.OK(c, ch)
}

// Create handles POST /organizations/:orgId/children.
func (h *Handler) Create(c *gin.Context) {
	var body ChildRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "first_name required")
		return
	}
	ch := &models.Child{
		OrganizationID: authz.OrgID(c),
		GuardianID:     body.GuardianID,
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		DateOfBirth:    body.DateOfBirth,
		Allergies:      body.Allergies,
		SpecialNeeds:   body.SpecialNeeds,
	}
	if err := h.repo.Create(c.Request.Context(), ch); err != nil {
		h.logger.Error("create child", zap.Error(err))
		response.Internal(c, "failed to create child")
		return
	}
	response.Created(c, ch)
}

// Update handles PATCH /organizations/:orgId/children/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid child id")
		return
	}
	var body ChildRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "first_name required")
		return
	}
	ch := &models.Child{
		ID:             id,
		OrganizationID: authz.OrgID(c),
		GuardianID:     body.GuardianID,
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		DateOfBirth:    body.DateOfBirth,
		Allergies:      body.Allergies,
		SpecialNeeds:   body.SpecialNeeds,
	}
	if err := h.repo.Update(c.Request.Context(), ch); err != nil {
		response.NotFound(c, "child not found")
		return
	}
	response.OK(c, ch)
}

// Delete handles DELETE /organizations/:orgId/children/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid child id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), authz.OrgID(c), id); err != nil {
		response.Internal(c, "failed to delete child")
		return
	}
	response.NoContent(c)
}

// UploadPhoto handles POST /organizations/:orgId/children/:id/photo (multipart form, field "photo").
func (h *Handler) UploadPhoto(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "photo storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid child id")
		return
	}
	orgID := authz.OrgID(c)
	if _, err := h.repo.GetByID(c.Request.Context(), orgID, id); err != nil {
		response.NotFound(c, "child not found")
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "photo file required")
		return
	}
	if file.Size > storage.MaxPhotoSize {
		response.BadRequest(c, "photo exceeds maximum size")
		return
	}
	if !storage.ValidatePhotoType(file.Header.Get("Content-Type"), file.Filename) {
		response.BadRequest(c, "unsupported photo type")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer src.Close()

	key := storage.ChildPhotoKey(orgID.String(), id.String(), file.Filename)
	if _, err := h.s3.Upload(c.Request.Context(), key, storage.ContentTypeForFilename(file.Filename), src, file.Size); err != nil {
		h.logger.Error("upload child photo", zap.Error(err))
		response.Internal(c, "failed to upload photo")
		return
	}
	if err := h.repo.SetPhotoKey(c.Request.Context(), orgID, id, key); err != nil {
		response.Internal(c, "failed to save photo reference")
		return
	}
	response.OK(c, gin.H{"photo_key": key})
}

// PhotoURL handles GET /organizations/:orgId/children/:id/photo-url.
func (h *Handler) PhotoURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "photo storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid child id")
		return
	}
	ch, err := h.repo.GetByID(c.Request.Context(), authz.OrgID(c), id)
	if err != nil {
		response.NotFound(c, "child not found")
		return
	}
	if ch.PhotoKey == "" {
		response.NotFound(c, "child has no photo")
		return
	}
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), ch.PhotoKey, h.s3.PresignExpire())
	if err != nil {
		response.Internal(c, "failed to sign photo url")
		return
	}
	response.OK(c, gin.H{"url": url})
}
