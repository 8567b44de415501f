package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mockchat/internal/models"
	"mockchat/internal/store"
	"mockchat/internal/telemetry"
)

// UserHandler manages profiles, the caller's own account and the admin dashboard.
type UserHandler struct {
	store Store
	sim   Simulation
	audit *telemetry.AuditEmitter
}

// NewUserHandler constructs a UserHandler. sim may be nil.
func NewUserHandler(st Store, sim Simulation, audit *telemetry.AuditEmitter) *UserHandler {
	return &UserHandler{store: st, sim: sim, audit: audit}
}

// ListUsers returns every user.
func (h *UserHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.store.Users()})
}

// GetUser returns one profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.store.User(c.Param("user_id"))
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// LikeUser increments a profile's like counter.
func (h *UserHandler) LikeUser(c *gin.Context) {
	likes, err := h.store.LikeUserProfile(c.Param("user_id"))
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

// UpdateMe edits the caller's profile. Absent fields stay unchanged.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Name       *string       `json:"name"`
		Avatar     *string       `json:"avatar"`
		About      *string       `json:"about"`
		Notes      []string      `json:"notes"`
		Music      *models.Music `json:"music"`
		ClearMusic bool          `json:"clear_music"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}

	user, err := h.store.UpdateUser(c.GetString("userID"), store.ProfileUpdate{
		Name:       req.Name,
		Avatar:     req.Avatar,
		About:      req.About,
		Notes:      req.Notes,
		Music:      req.Music,
		ClearMusic: req.ClearMusic,
	})
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SavedMessages returns the caller's personal notes chat, creating it on first use.
func (h *UserHandler) SavedMessages(c *gin.Context) {
	chat, err := h.store.SavedMessagesChat(c.GetString("userID"))
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// CloseActiveChat ends the caller's active conversation.
func (h *UserHandler) CloseActiveChat(c *gin.Context) {
	if h.sim != nil {
		h.sim.Deactivate(c.GetString("userID"))
	}
	c.Status(http.StatusNoContent)
}

// CreateUser registers a user from the admin dashboard.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Name   string      `json:"name" binding:"required"`
		Email  string      `json:"email" binding:"required"`
		Avatar string      `json:"avatar"`
		Role   models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.audit, err)
		return
	}

	user, err := h.store.AddUser(models.User{Name: req.Name, Email: req.Email, Avatar: req.Avatar, Role: req.Role})
	if err != nil {
		respondError(c, h.audit, err)
		return
	}
	emitAudit(c, h.audit, "INFO", "User created: "+user.ID)
	c.JSON(http.StatusCreated, user)
}

// DeleteUser removes a user from the admin dashboard.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == c.GetString("userID") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot remove yourself"})
		return
	}
	if err := h.store.RemoveUser(userID); err != nil {
		respondError(c, h.audit, err)
		return
	}
	emitAudit(c, h.audit, "INFO", "User removed: "+userID)
	c.Status(http.StatusNoContent)
}
