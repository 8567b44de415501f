package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mockchat/internal/models"
	"mockchat/internal/store"
	"mockchat/internal/telemetry"
)

// StatusHandler manages status stories.
type StatusHandler struct {
	store Store
	audit *telemetry.AuditEmitter
}

// NewStatusHandler constructs a StatusHandler.
func NewStatusHandler(st Store, audit *telemetry.AuditEmitter) *StatusHandler {
	return &StatusHandler{store: st, audit: audit}
}

// ListStatuses returns every status, newest first. With grouped=true the statuses are
// grouped under their authors instead.
func (h *StatusHandler) ListStatuses(c *gin.Context) {
	grouped := false
	if raw := c.Query("grouped"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grouped flag"})
			return
		}
		grouped = v
	}
	if grouped {
		c.JSON(http.StatusOK, gin.H{"authors": h.store.StatusAuthors()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": h.store.Statuses()})
}

// PostStatus publishes a text or image status for the caller.
func (h *StatusHandler) PostStatus(c *gin.Context) {
	var req struct {
		Type    models.StatusType `json:"type"`
		Content string            `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}
	if req.Type == "" {
		req.Type = models.StatusText
	}

	status, err := h.store.AddStatus(store.StatusDraft{UserID: c.GetString("userID"), Type: req.Type, Content: req.Content})
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

// View records that the caller has seen a status.
func (h *StatusHandler) View(c *gin.Context) {
	if err := h.store.MarkStatusAsViewed(c.Param("status_id"), c.GetString("userID")); err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// React adds, replaces or removes the caller's emoji on a status.
func (h *StatusHandler) React(c *gin.Context) {
	var req struct {
		Emoji string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}
	status, err := h.store.AddReactionToStatus(c.Param("status_id"), c.GetString("userID"), req.Emoji)
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Reply answers a status privately in the direct chat with its owner.
func (h *StatusHandler) Reply(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}
	chat, msg, err := h.store.ReplyToStatus(c.Param("status_id"), c.GetString("userID"), req.Text)
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat_id": chat.ID, "message": msg})
}
