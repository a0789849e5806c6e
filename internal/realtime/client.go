package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents a single dashboard WebSocket connection.
type Client struct {
	ID     string
	OrgID  uuid.UUID
	UserID uuid.UUID
	hub    *Hub
	conn   *websocket.Conn
	send   chan WSMessage
	logger *zap.Logger
}

// Authorizer decides whether a user may watch an organization's dashboard.
type Authorizer func(ctx context.Context, userID, orgID uuid.UUID) bool

// ServeWs handles the WebSocket upgrade and runs the client loop. The token
// arrives as a query parameter because browsers cannot set headers on
// WebSocket requests.
func ServeWs(hub *Hub, logger *zap.Logger, jwtValidate func(token string) (userID uuid.UUID, err error), authorize Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgIDStr := c.Query("org_id")
		token := c.Query("token")
		if orgIDStr == "" || token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "org_id and token required"})
			return
		}
		orgID, err := uuid.Parse(orgIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid org_id"})
			return
		}
		userID, err := jwtValidate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if authorize != nil && !authorize(c.Request.Context(), userID, orgID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:     uuid.New().String(),
			OrgID:  orgID,
			UserID: userID,
			hub:    hub,
			conn:   conn,
			send:   make(chan WSMessage, 256),
			logger: logger,
		}
		hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	// Dashboards are read-only; inbound frames only reset the deadline.
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
