package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mockchat/internal/models"
	"mockchat/internal/observability"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events may wait for a slow connection before it is dropped.
	sendBuffer = 64
)

// client is one websocket connection. Only its writer goroutine writes to conn.
type client struct {
	conn *websocket.Conn
	info ConnInfo
	send chan []byte
	done chan struct{}
	stop sync.Once
}

func (c *client) close() {
	c.stop.Do(func() { close(c.done) })
}

// Hub maintains active websocket rooms, one per chat. Broadcast only queues events, so a
// stalled connection never holds up the store.
type Hub struct {
	rooms map[string]map[*websocket.Conn]*client
	mu    sync.RWMutex

	// viewers counts open sockets per chat/viewer pair.
	viewers  map[string]int
	viewerMu sync.Mutex

	log *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		rooms:   make(map[string]map[*websocket.Conn]*client),
		viewers: make(map[string]int),
		log:     log,
	}
}

// AddClient registers a websocket connection to a chat room and starts its writer.
func (h *Hub) AddClient(chatID string, conn *websocket.Conn, info ConnInfo) {
	c := &client{conn: conn, info: info, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
	h.mu.Lock()
	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = make(map[*websocket.Conn]*client)
	}
	if prev, ok := h.rooms[chatID][conn]; ok {
		prev.close()
	}
	h.rooms[chatID][conn] = c
	h.mu.Unlock()

	go h.writeLoop(chatID, c)
}

// RemoveClient removes a websocket connection from a chat room and stops its writer.
// Removing an unknown connection is a no-op.
func (h *Hub) RemoveClient(chatID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.rooms[chatID]
	if !ok {
		return
	}
	if c, ok := conns[conn]; ok {
		c.close()
		delete(conns, conn)
	}
	if len(conns) == 0 {
		delete(h.rooms, chatID)
	}
}

// Clients reports how many connections watch a chat.
func (h *Hub) Clients(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

// Join counts a new socket of viewerID on chatID and runs activate. Join and Part for
// the same hub are serialized.
func (h *Hub) Join(viewerID, chatID string, activate func()) {
	h.viewerMu.Lock()
	defer h.viewerMu.Unlock()
	h.viewers[viewerKey(viewerID, chatID)]++
	if activate != nil {
		activate()
	}
}

// Part releases one socket of viewerID on chatID. leave runs only when it was the viewer's
// last socket on that chat; Part reports whether it did.
func (h *Hub) Part(viewerID, chatID string, leave func()) bool {
	h.viewerMu.Lock()
	defer h.viewerMu.Unlock()
	key := viewerKey(viewerID, chatID)
	if h.viewers[key] == 0 {
		return false
	}
	h.viewers[key]--
	if h.viewers[key] > 0 {
		return false
	}
	delete(h.viewers, key)
	if leave != nil {
		leave()
	}
	return true
}

func viewerKey(viewerID, chatID string) string { return chatID + "/" + viewerID }

// OnStoreEvent forwards chat-scoped events to the chat's viewers.
func (h *Hub) OnStoreEvent(ev models.StoreEvent) {
	if ev.ChatID == "" {
		return
	}
	h.Broadcast(ev.ChatID, chatEventFrom(ev))
}

// Broadcast queues an event for all clients in a chat. A client whose queue is full is
// disconnected.
func (h *Hub) Broadcast(chatID string, event models.ChatEvent) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[chatID]))
	for _, c := range h.rooms[chatID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("encode chat event", zap.String("chat_id", chatID), zap.Error(err))
		return
	}

	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			observability.IncDroppedEvent("ws")
			h.log.Warn("websocket client too slow, disconnecting", zap.String("chat_id", chatID), zap.String("conn_id", c.info.ConnID))
			h.drop(chatID, c, "send buffer full")
		}
	}
}

func (h *Hub) writeLoop(chatID string, c *client) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.log.Warn("websocket write error", zap.String("chat_id", chatID), zap.String("conn_id", c.info.ConnID), zap.Error(err))
				h.drop(chatID, c, err.Error())
				return
			}
		}
	}
}

// drop disconnects a client. Closing the socket ends its reader, which does the rest of
// the cleanup.
func (h *Hub) drop(chatID string, c *client, reason string) {
	h.RemoveClient(chatID, c.conn)
	if c.conn != nil {
		c.conn.Close()
	}
	publishWSEvent(context.Background(), "ws_error", chatID, c.info, reason)
}

func chatEventFrom(ev models.StoreEvent) models.ChatEvent {
	out := models.ChatEvent{Type: ev.Type, ChatID: ev.ChatID, UserID: ev.UserID, Chat: ev.Chat}
	if ev.Message != nil {
		out.MessageID = ev.Message.ID
		if ev.Type != models.EventMessageDeleted {
			out.Message = ev.Message
		}
	}
	return out
}

func publishWSEvent(ctx context.Context, event, chatID string, info ConnInfo, reason string) {
	observability.IncWSEvent("chat", event)
	_ = observability.PublishEvent(ctx, "ws_events.chats", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		ChatID:    chatID,
		Payload: map[string]any{
			"ws": map[string]any{
				"kind":        "chat",
				"resource_id": chatID,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]any{
				"user_id": info.UserID,
				"ip":      info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
