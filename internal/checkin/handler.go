package checkin

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/parishdesk/backend/internal/auth"
	"github.com/parishdesk/backend/internal/authz"
	"github.com/parishdesk/backend/internal/children"
	"github.com/parishdesk/backend/internal/models"
	"github.com/parishdesk/backend/pkg/response"
)

// Broadcaster pushes live events to dashboard subscribers. A nil broadcaster
// disables realtime updates without affecting check-in flow.
type Broadcaster interface {
	BroadcastToOrg(orgID uuid.UUID, event string, payload interface{})
}

// Handler exposes room management and child check-in endpoints.
type Handler struct {
	repo     *Repository
	children *children.Repository
	hub      Broadcaster
	logger   *zap.Logger
}

// NewHandler creates a check-in handler.
func NewHandler(repo *Repository, childRepo *children.Repository, hub Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, children: childRepo, hub: hub, logger: logger}
}

// RoomRequest is the create/update body for rooms.
type RoomRequest struct {
	Name         string `json:"name" binding:"required"`
	MinAgeMonths int    `json:"min_age_months"`
	MaxAgeMonths int    `json:"max_age_months" binding:"required"`
	Capacity     int    `json:"capacity" binding:"required,min=1"`
}

func (r *RoomRequest) validate() string {
	if r.MinAgeMonths < 0 {
		return "min_age_months must not be negative"
	}
	if r.MaxAgeMonths < r.MinAgeMonths {
		return "max_age_months must be at least min_age_months"
	}
	return ""
}

// ListRooms returns the organization's rooms with live occupancy.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.repo.ListRooms(c.Request.Context(), authz.OrgID(c))
	if err != nil {
		h.logger.Error("list rooms failed", zap.Error(err))
		response.Internal(c, "Failed to fetch rooms")
		return
	}
	response.OK(c, rooms)
}

// CreateRoom adds a room.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	room := &models.Room{
		OrganizationID: authz.OrgID(c),
		Name:           req.Name,
		MinAgeMonths:   req.MinAgeMonths,
		MaxAgeMonths:   req.MaxAgeMonths,
		Capacity:       req.Capacity,
	}
	if err := h.repo.CreateRoom(c.Request.Context(), room); err != nil {
		h.logger.Error("create room failed", zap.Error(err))
		response.Internal(c, "Failed to create room")
		return
	}
	response.Created(c, room)
}

// UpdateRoom modifies a room's configuration.
func (h *Handler) UpdateRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.BadRequest(c, "Invalid room id")
		return
	}
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	room := &models.Room{
		ID:             roomID,
		OrganizationID: authz.OrgID(c),
		Name:           req.Name,
		MinAgeMonths:   req.MinAgeMonths,
		MaxAgeMonths:   req.MaxAgeMonths,
		Capacity:       req.Capacity,
	}
	if err := h.repo.UpdateRoom(c.Request.Context(), room); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Room not found")
			return
		}
		h.logger.Error("update room failed", zap.Error(err))
		response.Internal(c, "Failed to update room")
		return
	}
	response.OK(c, room)
}

// DeleteRoom removes a room.
func (h *Handler) DeleteRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.BadRequest(c, "Invalid room id")
		return
	}
	if err := h.repo.DeleteRoom(c.Request.Context(), authz.OrgID(c), roomID); err != nil {
		h.logger.Error("delete room failed", zap.Error(err))
		response.Internal(c, "Failed to delete room")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// AssignmentPreview reports which room a child would be placed in right now,
// without creating a check-in.
func (h *Handler) AssignmentPreview(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid child id")
		return
	}
	orgID := authz.OrgID(c)
	child, err := h.children.GetByID(c.Request.Context(), orgID, childID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Child not found")
			return
		}
		h.logger.Error("fetch child failed", zap.Error(err))
		response.Internal(c, "Failed to fetch child")
		return
	}
	rooms, err := h.repo.ListRooms(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list rooms failed", zap.Error(err))
		response.Internal(c, "Failed to fetch rooms")
		return
	}
	room := FindRoomForChild(child, rooms, time.Now())
	if room == nil {
		response.OK(c, gin.H{"room": nil})
		return
	}
	response.OK(c, gin.H{"room": room})
}

// CheckInRequest is the check-in body. room_id overrides the automatic
// assignment when present.
type CheckInRequest struct {
	ChildID uuid.UUID  `json:"child_id" binding:"required"`
	RoomID  *uuid.UUID `json:"room_id"`
}

// CheckIn places a child in a room and records the check-in.
func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	orgID := authz.OrgID(c)
	ctx := c.Request.Context()

	child, err := h.children.GetByID(ctx, orgID, req.ChildID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Child not found")
			return
		}
		h.logger.Error("fetch child failed", zap.Error(err))
		response.Internal(c, "Failed to fetch child")
		return
	}

	if open, err := h.repo.OpenCheckInForChild(ctx, orgID, child.ID); err == nil && open != nil {
		response.Conflict(c, "Child is already checked in")
		return
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.logger.Error("open check-in lookup failed", zap.Error(err))
		response.Internal(c, "Failed to check current status")
		return
	}

	var room *models.Room
	if req.RoomID != nil {
		room, err = h.repo.GetRoom(ctx, orgID, *req.RoomID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				response.NotFound(c, "Room not found")
				return
			}
			h.logger.Error("fetch room failed", zap.Error(err))
			response.Internal(c, "Failed to fetch room")
			return
		}
	} else {
		rooms, err := h.repo.ListRooms(ctx, orgID)
		if err != nil {
			h.logger.Error("list rooms failed", zap.Error(err))
			response.Internal(c, "Failed to fetch rooms")
			return
		}
		room = FindRoomForChild(child, rooms, time.Now())
		if room == nil {
			response.UnprocessableEntity(c, "No room matches this child's age")
			return
		}
	}

	ci := &models.CheckIn{
		OrganizationID: orgID,
		ChildID:        child.ID,
		RoomID:         room.ID,
		CheckedInBy:    auth.MustUserID(c),
	}
	if err := h.repo.CreateCheckIn(ctx, ci); err != nil {
		h.logger.Error("create check-in failed", zap.Error(err))
		response.Internal(c, "Failed to check in")
		return
	}

	h.broadcast(orgID, "child_checked_in", gin.H{
		"checkin_id": ci.ID,
		"child_id":   child.ID,
		"child_name": child.FirstName + " " + child.LastName,
		"room_id":    room.ID,
		"room_name":  room.Name,
	})
	h.broadcastOccupancy(c, orgID, room.ID)

	response.Created(c, gin.H{"checkin": ci, "room": room})
}

// CheckOut closes a child's open check-in.
func (h *Handler) CheckOut(c *gin.Context) {
	checkInID, err := uuid.Parse(c.Param("checkinId"))
	if err != nil {
		response.BadRequest(c, "Invalid check-in id")
		return
	}
	orgID := authz.OrgID(c)
	ci, err := h.repo.CheckOut(c.Request.Context(), orgID, checkInID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "No open check-in with that id")
			return
		}
		h.logger.Error("check out failed", zap.Error(err))
		response.Internal(c, "Failed to check out")
		return
	}

	h.broadcast(orgID, "child_checked_out", gin.H{
		"checkin_id": ci.ID,
		"child_id":   ci.ChildID,
		"room_id":    ci.RoomID,
	})
	h.broadcastOccupancy(c, orgID, ci.RoomID)

	response.OK(c, ci)
}

// RoomReport returns a room's attendance over a trailing window
// (?days=N, default 7).
func (h *Handler) RoomReport(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.BadRequest(c, "Invalid room id")
		return
	}
	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 365 {
			response.BadRequest(c, "Invalid days value")
			return
		}
		days = parsed
	}
	since := time.Now().AddDate(0, 0, -days)
	list, err := h.repo.RoomAttendanceSince(c.Request.Context(), authz.OrgID(c), roomID, since)
	if err != nil {
		h.logger.Error("room report failed", zap.Error(err))
		response.Internal(c, "Failed to build report")
		return
	}
	response.OK(c, gin.H{"since": since, "attendance": list})
}

func (h *Handler) broadcast(orgID uuid.UUID, event string, payload interface{}) {
	if h.hub == nil {
		return
	}
	h.hub.BroadcastToOrg(orgID, event, payload)
}

func (h *Handler) broadcastOccupancy(c *gin.Context, orgID, roomID uuid.UUID) {
	if h.hub == nil {
		return
	}
	room, err := h.repo.GetRoom(c.Request.Context(), orgID, roomID)
	if err != nil {
		h.logger.Warn("occupancy broadcast skipped", zap.Error(err))
		return
	}
	h.hub.BroadcastToOrg(orgID, "room_occupancy", gin.H{
		"room_id":       room.ID,
		"current_count": room.CurrentCount,
		"capacity":      room.Capacity,
	})
}
