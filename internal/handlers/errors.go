package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mockchat/internal/store"
	"mockchat/internal/telemetry"
)

// statusForError maps store failures to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrChatNotFound),
		errors.Is(err, store.ErrMessageNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrStatusNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNotAdmin), errors.Is(err, store.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, store.ErrChatBlocked), errors.Is(err, store.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidInput),
		errors.Is(err, store.ErrNotGroup),
		errors.Is(err, store.ErrNotAPoll),
		errors.Is(err, store.ErrOptionNotFound),
		errors.Is(err, store.ErrMessageDeleted):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Authorization failures are audited.
func respondError(c *gin.Context, audit *telemetry.AuditEmitter, err error) {
	status := statusForError(err)
	switch status {
	case http.StatusForbidden:
		emitAudit(c, audit, "ERROR", "not allowed: "+err.Error())
	case http.StatusInternalServerError:
		emitAudit(c, audit, "ERROR", "internal error")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, audit *telemetry.AuditEmitter, err error) {
	emitAudit(c, audit, "ERROR", "invalid request payload")
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func forbidden(c *gin.Context, audit *telemetry.AuditEmitter, text string) {
	emitAudit(c, audit, "ERROR", text)
	c.JSON(http.StatusForbidden, gin.H{"error": text})
}
