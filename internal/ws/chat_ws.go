package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"mockchat/internal/models"
	"mockchat/internal/observability"
)

// ChatStore is the part of the store a websocket viewer needs.
type ChatStore interface {
	User(userID string) (models.User, error)
	Chat(chatID string) (models.Chat, error)
	MarkMessagesAsRead(chatID, readerID string) (int, error)
}

// Simulation tracks which chat a viewer is looking at.
type Simulation interface {
	Activate(viewerID, chatID string)
	Leave(viewerID, chatID string)
}

// ChatWebSocketHandler handles chat websocket connections.
type ChatWebSocketHandler struct {
	hub   *Hub
	store ChatStore
	sim   Simulation
	log   *zap.Logger
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler.
func NewChatWebSocketHandler(hub *Hub, store ChatStore, sim Simulation, log *zap.Logger) *ChatWebSocketHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatWebSocketHandler{hub: hub, store: store, sim: sim, log: log}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection, opens the chat for the viewer and registers the client.
// Closing the viewer's last socket on the chat deactivates the simulation for it.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	chatID := strings.TrimSpace(c.Param("chat_id"))
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	ctx, span := otel.Tracer("mockchat/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := observability.ViewerIDFromRequest(c.Request)
	if _, err := h.store.User(userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	chat, err := h.store.Chat(chatID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if !chat.IsParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for chat"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	if _, err := h.store.MarkMessagesAsRead(chatID, userID); err != nil {
		h.log.Warn("mark read on connect", zap.String("chat_id", chatID), zap.Error(err))
	}
	h.hub.Join(userID, chatID, func() {
		if h.sim != nil {
			h.sim.Activate(userID, chatID)
		}
	})
	h.hub.AddClient(chatID, conn, info)

	observability.IncWSActive("chat")
	publishWSEvent(ctx, "ws_connect", chatID, info, "")

	// The request context ends when Handle returns; the socket outlives it.
	connCtx := context.WithoutCancel(ctx)
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(chatID, conn)
			// Another socket of the same viewer may still show this chat.
			h.hub.Part(userID, chatID, func() {
				if h.sim != nil {
					h.sim.Leave(userID, chatID)
				}
			})
			observability.DecWSActive("chat")
			publishWSEvent(connCtx, "ws_disconnect", chatID, info, closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					publishWSEvent(connCtx, "ws_error", chatID, info, closeReason)
				}
				return
			}
		}
	}()
}
