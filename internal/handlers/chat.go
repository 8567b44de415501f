package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mockchat/internal/models"
	"mockchat/internal/store"
	"mockchat/internal/telemetry"
)

// ChatHandler manages chat list and chat-level endpoints.
type ChatHandler struct {
	store   Store
	sim     Simulation
	journal Journal
	audit   *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler. sim and journal may be nil.
func NewChatHandler(st Store, sim Simulation, journal Journal, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		store:   st,
		sim:     sim,
		journal: journal,
		audit:   audit,
	}
}

// ListChats returns the chat list entries of the authenticated user. The optional q
// parameter keeps entries whose title contains it, ignoring case.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetString("userID")
	if q := c.Query("q"); q != "" {
		c.JSON(http.StatusOK, gin.H{"chats": h.store.SearchSummaries(userID, q)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": h.store.Summaries(userID)})
}

// CreateChat handles POST /chats. One other participant makes a private direct chat, more
// make a group.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req struct {
		Name           string   `json:"name"`
		ParticipantIDs []string `json:"participant_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}

	chat, err := h.store.CreateConversation(c.GetString("userID"), req.Name, req.ParticipantIDs, nil)
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	if chat.IsGroup() {
		emitAudit(c, h.audit, "INFO", "Group created")
	}
	c.JSON(http.StatusCreated, chat)
}

// StartDirectChat creates or returns the direct chat with another user.
func (h *ChatHandler) StartDirectChat(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}

	userID := c.GetString("userID")
	if req.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}
	chat, err := h.store.FindOrCreateDirectChat(userID, req.UserID, nil)
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// GetChat returns a chat with its messages.
func (h *ChatHandler) GetChat(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, chat)
}

// DeleteChat removes a chat for everyone.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	if chat.IsGroup() && !chat.IsAdmin(c.GetString("userID")) {
		forbidden(c, h.audit, "only admins can delete a group")
		return
	}
	if err := h.store.DeleteChat(chat.ID); err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// OpenChat makes the chat the caller's active conversation and marks it read.
func (h *ChatHandler) OpenChat(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	userID := c.GetString("userID")
	marked, err := h.store.MarkMessagesAsRead(chat.ID, userID)
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	if h.sim != nil {
		h.sim.Activate(userID, chat.ID)
	}
	c.JSON(http.StatusOK, gin.H{"chat_id": chat.ID, "marked_read": marked})
}

// MarkRead marks the messages of other participants as read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	marked, err := h.store.MarkMessagesAsRead(chat.ID, c.GetString("userID"))
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_read": marked})
}

// TogglePin pins or unpins the chat in the chat list.
func (h *ChatHandler) TogglePin(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	pinned, err := h.store.TogglePinChat(chat.ID)
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_pinned": pinned})
}

// ToggleMute mutes or unmutes the chat.
func (h *ChatHandler) ToggleMute(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	muted, err := h.store.ToggleMuteChat(chat.ID)
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_muted": muted})
}

// Block blocks the chat. Blocking is one-way.
func (h *ChatHandler) Block(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	if err := h.store.BlockChat(chat.ID, c.GetString("userID")); err != nil {
		respondError(c, h.audit, err)
		return
	}
	emitAudit(c, h.audit, "INFO", "Chat blocked")
	c.Status(http.StatusNoContent)
}

// EndCall narrates a finished call in the chat.
func (h *ChatHandler) EndCall(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	var req struct {
		Kind            string `json:"kind" binding:"required"`
		DurationSeconds int    `json:"duration_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}
	if req.DurationSeconds < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration must not be negative"})
		return
	}
	msg, err := h.store.RecordCallEnded(chat.ID, store.CallKind(req.Kind), time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Typing returns the users currently shown as typing in the chat.
func (h *ChatHandler) Typing(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	typing := []string{}
	if h.sim != nil {
		if ids := h.sim.TypingUsers(chat.ID); ids != nil {
			typing = ids
		}
	}
	c.JSON(http.StatusOK, gin.H{"typing": typing})
}

// Events returns the journaled store events of the chat.
func (h *ChatHandler) Events(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	if h.journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event journal not configured"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	entries, err := h.journal.ListForChat(c.Request.Context(), chat.ID, limit)
	if err != nil {
		emitAudit(c, h.audit, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"events": entries})
}

// memberChat loads the :chat_id chat and checks that the caller participates in it.
func memberChat(c *gin.Context, st Store, audit *telemetry.AuditEmitter) (models.Chat, bool) {
	chat, err := st.Chat(c.Param("chat_id"))
	if err != nil {
		respondError(c, audit, err)
		return models.Chat{}, false
	}
	if !chat.IsParticipant(c.GetString("userID")) {
		forbidden(c, audit, "not a chat member")
		return models.Chat{}, false
	}
	return chat, true
}
