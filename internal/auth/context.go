package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextUserID is the gin context key for the authenticated user's ID.
	ContextUserID = "user_id"
	// ContextUserEmail is the gin context key for the authenticated user's email.
	ContextUserEmail = "user_email"
)

// MustUserID returns the authenticated user's ID from the gin context.
// Panics if called on a route without the JWT middleware.
func MustUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextUserID).(uuid.UUID)
}
