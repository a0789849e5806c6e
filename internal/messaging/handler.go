package messaging

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/parishdesk/backend/internal/auth"
	"github.com/parishdesk/backend/internal/authz"
	"github.com/parishdesk/backend/internal/members"
	"github.com/parishdesk/backend/internal/models"
	"github.com/parishdesk/backend/pkg/queue"
	"github.com/parishdesk/backend/pkg/response"
)

// Handler exposes outbound messaging endpoints. Messages are written to
// message_logs as queued and picked up by the worker for delivery.
type Handler struct {
	repo    *Repository
	members *members.Repository
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewHandler creates a messaging handler.
func NewHandler(repo *Repository, memberRepo *members.Repository, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, members: memberRepo, queue: q, logger: logger}
}

// SendRequest targets a set of members on one channel.
type SendRequest struct {
	MemberIDs []uuid.UUID           `json:"member_ids" binding:"required,min=1"`
	Channel   models.MessageChannel `json:"channel" binding:"required"`
	Subject   string                `json:"subject"`
	Body      string                `json:"body" binding:"required"`
}

// Send resolves recipients, logs one queued message per reachable member,
// and enqueues delivery jobs. Members without contact details for the
// chosen channel are reported as skipped.
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	switch req.Channel {
	case models.ChannelEmail, models.ChannelSMS, models.ChannelVoice:
	default:
		response.BadRequest(c, "Unknown channel")
		return
	}
	if req.Channel == models.ChannelEmail && req.Subject == "" {
		response.BadRequest(c, "Subject is required for email")
		return
	}

	orgID := authz.OrgID(c)
	ctx := c.Request.Context()

	recipients, err := h.members.GetByIDs(ctx, orgID, req.MemberIDs)
	if err != nil {
		h.logger.Error("resolve recipients failed", zap.Error(err))
		response.Internal(c, "Failed to resolve recipients")
		return
	}
	if len(recipients) == 0 {
		response.BadRequest(c, "No matching members")
		return
	}

	senderID := auth.MustUserID(c)
	var logs []*models.MessageLog
	var skipped []uuid.UUID
	for _, m := range recipients {
		address := contactFor(m, req.Channel)
		if address == "" {
			skipped = append(skipped, m.ID)
			continue
		}
		memberID := m.ID
		logs = append(logs, &models.MessageLog{
			OrganizationID: orgID,
			MemberID:       &memberID,
			Channel:        req.Channel,
			Recipient:      address,
			Subject:        req.Subject,
			Body:           req.Body,
			Status:         models.MessageStatusQueued,
			SentBy:         senderID,
		})
	}
	if len(logs) == 0 {
		response.UnprocessableEntity(c, "No selected member has contact details for that channel")
		return
	}

	if err := h.repo.CreateBatch(ctx, logs); err != nil {
		h.logger.Error("create message logs failed", zap.Error(err))
		response.Internal(c, "Failed to queue messages")
		return
	}

	for _, m := range logs {
		err := h.queue.EnqueueMessage(ctx, queue.MessagePayload{
			MessageID:      m.ID,
			OrganizationID: orgID,
			Channel:        m.Channel,
		})
		if err != nil {
			h.logger.Error("enqueue failed", zap.Error(err), zap.String("message_id", m.ID.String()))
			if markErr := h.repo.MarkFailed(ctx, m.ID, "enqueue failed"); markErr != nil {
				h.logger.Error("mark failed errored", zap.Error(markErr))
			}
		}
	}

	response.Created(c, gin.H{
		"queued":  len(logs),
		"skipped": skipped,
	})
}

// List returns recent message logs (?limit=N, default 100).
func (h *Handler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}
	logs, err := h.repo.List(c.Request.Context(), authz.OrgID(c), limit)
	if err != nil {
		h.logger.Error("list message logs failed", zap.Error(err))
		response.Internal(c, "Failed to fetch messages")
		return
	}
	response.OK(c, logs)
}

// Get returns one message log.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		response.BadRequest(c, "Invalid message id")
		return
	}
	m, err := h.repo.GetByID(c.Request.Context(), authz.OrgID(c), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Message not found")
			return
		}
		h.logger.Error("get message failed", zap.Error(err))
		response.Internal(c, "Failed to fetch message")
		return
	}
	response.OK(c, m)
}

func contactFor(m *models.Member, ch models.MessageChannel) string {
	switch ch {
	case models.ChannelEmail:
		return m.Email
	case models.ChannelSMS, models.ChannelVoice:
		return m.Phone
	}
	return ""
}
