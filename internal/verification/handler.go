package verification

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parishdesk/backend/internal/auth"
	"github.com/parishdesk/backend/pkg/response"
)

// Handler exposes phone verification endpoints for the logged-in user.
type Handler struct {
	service *Service
	users   *auth.Repository
	logger  *zap.Logger
}

// NewHandler creates a verification handler.
func NewHandler(service *Service, users *auth.Repository, logger *zap.Logger) *Handler {
	return &Handler{service: service, users: users, logger: logger}
}

// StartRequest begins verification of a phone number.
type StartRequest struct {
	Phone string `json:"phone" binding:"required,e164"`
}

// Start texts a one-time code to the submitted number.
func (h *Handler) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "A phone number in E.164 format is required")
		return
	}
	userID := auth.MustUserID(c)
	if err := h.service.Start(c.Request.Context(), userID, req.Phone); err != nil {
		h.logger.Error("start verification failed", zap.Error(err))
		response.Internal(c, "Failed to send verification code")
		return
	}
	response.OK(c, gin.H{"sent": true})
}

// ConfirmRequest submits the received code along with the number it verifies.
type ConfirmRequest struct {
	Phone string `json:"phone" binding:"required,e164"`
	Code  string `json:"code" binding:"required,len=6"`
}

// Confirm checks the code and, on success, saves the verified number on the
// user's account.
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Phone and six-digit code are required")
		return
	}
	userID := auth.MustUserID(c)
	err := h.service.Confirm(c.Request.Context(), userID, req.Code)
	switch {
	case err == nil:
	case errors.Is(err, ErrTooManyAttempts):
		response.TooManyRequests(c, "Too many attempts, request a new code")
		return
	case errors.Is(err, ErrCodeExpired):
		response.BadRequest(c, "Code expired, request a new one")
		return
	case errors.Is(err, ErrCodeMismatch):
		response.BadRequest(c, "Incorrect code")
		return
	default:
		h.logger.Error("confirm verification failed", zap.Error(err))
		response.Internal(c, "Failed to verify code")
		return
	}
	if err := h.users.UpdatePhone(c.Request.Context(), userID, req.Phone); err != nil {
		h.logger.Error("save verified phone failed", zap.Error(err))
		response.Internal(c, "Code accepted but saving the number failed")
		return
	}
	response.OK(c, gin.H{"verified": true})
}
