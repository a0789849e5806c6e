package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains organization_id -> set of dashboard connections and
// broadcasts check-in events. Uses Redis pub/sub for horizontal scaling.
type Hub struct {
	// orgID -> map[clientID]*Client
	orgs     map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func() // cancel Redis subscription per org
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher publishes org events to Redis for cross-instance broadcast.
type RedisPublisher interface {
	PublishOrgEvent(orgID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to org channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeOrg(orgID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		orgs:     make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to an organization's dashboard channel. Starts the
// Redis subscription for that org when the first client joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.orgs[c.OrgID] == nil {
		h.orgs[c.OrgID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeOrg(c.OrgID, func(event string, payload []byte) {
				h.broadcastLocal(c.OrgID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.OrgID] = cancel
			}
		}
	}
	h.orgs[c.OrgID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("dashboard client joined", zap.String("client_id", c.ID), zap.String("org_id", c.OrgID.String()))
}

// Unregister removes a client. Cancels the Redis subscription when the last
// client for the org leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.orgs[c.OrgID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.orgs, c.OrgID)
			if cancel, ok := h.subs[c.OrgID]; ok {
				cancel()
				delete(h.subs, c.OrgID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("dashboard client left", zap.String("client_id", c.ID), zap.String("org_id", c.OrgID.String()))
}

// broadcastLocal sends a message to this instance's clients only.
func (h *Hub) broadcastLocal(orgID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.orgs[orgID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToOrg delivers an event to every dashboard subscribed to the org.
// With Redis configured the event is published only; the subscriber callback
// performs the single local broadcast, so clients never see duplicates across
// instances.
func (h *Hub) BroadcastToOrg(orgID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		_ = h.redis.PublishOrgEvent(orgID, event, data)
		return
	}
	h.broadcastLocal(orgID, event, json.RawMessage(data))
}

// SubscriberCount returns the number of connected dashboard clients for an org.
func (h *Hub) SubscriberCount(orgID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.orgs[orgID])
}
