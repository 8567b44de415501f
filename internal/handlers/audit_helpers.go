package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mockchat/internal/telemetry"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) string {
	if id := c.GetString("userID"); id != "" {
		return id
	}
	return c.GetHeader("X-User-ID")
}

func emitAudit(c *gin.Context, audit *telemetry.AuditEmitter, level, text string) {
	audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
