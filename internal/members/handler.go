package members

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parishdesk/backend/internal/authz"
	"github.com/parishdesk/backend/internal/models"
	"github.com/parishdesk/backend/pkg/response"
	"github.com/parishdesk/backend/pkg/storage"
)

// Handler handles member HTTP endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a members handler. s3 may be nil; photo endpoints then
// respond 503.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// MemberRequest is the body for creating or updating a member.
type MemberRequest struct {
	FirstName string     `json:"first_name" binding:"required"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Notes     string     `json:"notes"`
	UserID    *uuid.UUID `json:"user_id"`
}

// List handles GET /organizations/:orgId/members.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), authz.OrgID(c))
	if err != nil {
		response.Internal(c, "failed to load members")
		return
	}
	response.OK(c, list)
}

// Get handles GET /organizations/:orgId/members/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}
	m, err := h.repo.GetByID(c.Request.Context(), authz.OrgID(c), id)
	if err != nil {
		response.NotFound(c, "member not found")
		return
	}
	response.OK(c, m)
}

// Create handles POST /organizations/:orgId/members.
func (h *Handler) Create(c *gin.Context) {
	var body MemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "first_name required")
		return
	}
	m := &models.Member{
		OrganizationID: authz.OrgID(c),
		UserID:         body.UserID,
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Email:          body.Email,
		Phone:          body.Phone,
		Notes:          body.Notes,
	}
	if err := h.repo.Create(c.Request.Context(), m); err != nil {
		h.logger.Error("create member", zap.Error(err))
		response.Internal(c, "failed to create member")
		return
	}
	response.Created(c, m)
}

// Update handles PATCH /organizations/:orgId/members/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}
	var body MemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "first_name required")
		return
	}
	m := &models.Member{
		ID:             id,
		OrganizationID: authz.OrgID(c),
		UserID:         body.UserID,
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Email:          body.Email,
		Phone:          body.Phone,
		Notes:          body.Notes,
	}
	if err := h.repo.Update(c.Request.Context(), m); err != nil {
		response.NotFound(c, "member not found")
		return
	}
	response.OK(c, m)
}

// Delete handles DELETE /organizations/:orgId/members/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), authz.OrgID(c), id); err != nil {
		response.Internal(c, "failed to delete member")
		return
	}
	response.NoContent(c)
}

// UploadPhoto handles POST /organizations/:orgId/members/:id/photo (multipart form, field "photo").
func (h *Handler) UploadPhoto(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "photo storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}
	orgID := authz.OrgID(c)
	if _, err := h.repo.GetByID(c.Request.Context(), orgID, id); err != nil {
		response.NotFound(c, "member not found")
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
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidatePhotoType(contentType, file.Filename) {
		response.BadRequest(c, "unsupported photo type")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer src.Close()

	key := storage.MemberPhotoKey(orgID.String(), id.String(), file.Filename)
	if _, err := h.s3.Upload(c.Request.Context(), key, storage.ContentTypeForFilename(file.Filename), src, file.Size); err != nil {
		h.logger.Error("upload member photo", zap.Error(err))
		response.Internal(c, "failed to upload photo")
		return
	}
	if err := h.repo.SetPhotoKey(c.Request.Context(), orgID, id, key); err != nil {
		response.Internal(c, "failed to save photo reference")
		return
	}
	response.OK(c, gin.H{"photo_key": key})
}

// PhotoURL handles GET /organizations/:orgId/members/:id/photo-url. Returns a
// pre-signed download URL.
func (h *Handler) PhotoURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "photo storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}
	m, err := h.repo.GetByID(c.Request.Context(), authz.OrgID(c), id)
	if err != nil {
		response.NotFound(c, "member not found")
		return
	}
	if m.PhotoKey == "" {
		response.NotFound(c, "member has no photo")
		return
	}
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), m.PhotoKey, h.s3.PresignExpire())
	if err != nil {
		response.Internal(c, "failed to sign photo url")
		return
	}
	response.OK(c, gin.H{"url": url})
}
