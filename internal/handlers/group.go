package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mockchat/internal/store"
	"mockchat/internal/telemetry"
)

// GroupHandler manages group administration endpoints.
type GroupHandler struct {
	store Store
	audit *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(st Store, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{store: st, audit: audit}
}

// AddMembers handles POST /groups/:chat_id/members.
func (h *GroupHandler) AddMembers(c *gin.Context) {
	var req struct {
		UserIDs []string `json:"user_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}

	added, err := h.store.AddMembersToGroup(c.Param("chat_id"), req.UserIDs, c.GetString("userID"))
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	emitAudit(c, h.audit, "INFO", "Group members added")
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// RemoveMember handles DELETE /groups/:chat_id/members/:user_id.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	if err := h.store.RemoveUserFromGroup(c.Param("chat_id"), c.Param("user_id"), c.GetString("userID")); err != nil {
		respondError(c, h.audit, err)
		return
	}
	emitAudit(c, h.audit, "INFO", "Group member removed")
	c.Status(http.StatusNoContent)
}

// UpdateDetails handles PATCH /groups/:chat_id. Absent fields stay unchanged.
func (h *GroupHandler) UpdateDetails(c *gin.Context) {
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}

	chatID := c.Param("chat_id")
	details := store.GroupDetails{Name: req.Name, Description: req.Description}
	if err := h.store.UpdateGroupDetails(chatID, details, c.GetString("userID")); err != nil {
		respondError(c, h.audit, err)
		return
	}
	chat, err := h.store.Chat(chatID)
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	emitAudit(c, h.audit, "INFO", "Group details updated")
	c.JSON(http.StatusOK, chat)
}
