package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mockchat/internal/models"
	"mockchat/internal/store"
	"mockchat/internal/telemetry"
)

// MessageHandler manages message endpoints of a chat.
type MessageHandler struct {
	store Store
	audit *telemetry.AuditEmitter
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(st Store, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{store: st, audit: audit}
}

type pollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type postMessageRequest struct {
	Text       string             `json:"text"`
	Poll       *pollRequest       `json:"poll"`
	Attachment *models.Attachment `json:"attachment"`
}

func (r postMessageRequest) draft(senderID string) (store.MessageDraft, error) {
	draft := store.MessageDraft{SenderID: senderID, Text: r.Text}
	switch {
	case r.Poll != nil && r.Attachment != nil:
		return draft, models.ErrAmbiguousPayload
	case r.Poll != nil:
		poll := &models.Poll{Question: r.Poll.Question}
		for _, text := range r.Poll.Options {
			poll.Options = append(poll.Options, models.PollOption{Text: text})
		}
		draft.Payload = poll
	case r.Attachment != nil:
		draft.Payload = r.Attachment
	}
	return draft, nil
}

// ListMessages returns the messages of a chat, oldest first.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": chat.Messages})
}

// PostMessage sends a text, poll or attachment message.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}
	draft, err := req.draft(c.GetString("userID"))
	if err != nil {
		badRequest(c, h.audit, err)
		return
	}

	msg, err := h.store.AddMessage(c.Param("chat_id"), draft)
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// DeleteMessage tombstones a message. Senders may delete their own messages and group admins
// any message of the group.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	chat, msg, ok := h.memberMessage(c)
	if !ok {
		return
	}
	userID := c.GetString("userID")
	if msg.SenderID != userID && !chat.IsAdmin(userID) {
		forbidden(c, h.audit, "only the sender may delete this message")
		return
	}
	if err := h.store.DeleteMessage(chat.ID, msg.ID); err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ForwardMessage copies a message into other chats of the caller. Chats that reject the
// message are listed under "errors"; the rest still receive it.
func (h *MessageHandler) ForwardMessage(c *gin.Context) {
	_, msg, ok := h.memberMessage(c)
	if !ok {
		return
	}
	var req struct {
		ChatIDs []string `json:"chat_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}

	forwarded, err := h.store.ForwardMessage(c.GetString("userID"), msg, req.ChatIDs)
	if err != nil && len(forwarded) == 0 {
		respondError(c, h.audit, firstError(err))
		return
	}
	resp := gin.H{"messages": forwarded}
	if err != nil {
		resp["errors"] = errorStrings(err)
	}
	c.JSON(http.StatusOK, resp)
}

// TogglePin pins or unpins a message in the chat header.
func (h *MessageHandler) TogglePin(c *gin.Context) {
	pinned, err := h.store.TogglePinMessage(c.Param("chat_id"), c.Param("message_id"), c.GetString("userID"))
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pinned": pinned})
}

// Vote casts, moves or retracts the caller's vote on a poll.
func (h *MessageHandler) Vote(c *gin.Context) {
	var req struct {
		OptionID string `json:"option_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}
	poll, err := h.store.HandleVote(c.Param("chat_id"), c.Param("message_id"), req.OptionID, c.GetString("userID"))
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"poll": poll})
}

func (h *MessageHandler) memberMessage(c *gin.Context) (models.Chat, models.Message, bool) {
	chat, ok := memberChat(c, h.store, h.audit)
	if !ok {
		return models.Chat{}, models.Message{}, false
	}
	msg, err := h.store.Message(chat.ID, c.Param("message_id"))
	if err != nil {
		respondError(c, h.audit, err)
		return models.Chat{}, models.Message{}, false
	}
	return chat, msg, true
}

func errorStrings(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		out := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func firstError(err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errs[0]
		}
	}
	return err
}
