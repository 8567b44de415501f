package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mockchat/internal/models"
	"mockchat/internal/telemetry"
)

// SimulationInspector exposes simulator state for debugging.
type SimulationInspector interface {
	ActiveViewers() []string
	ActiveChat(viewerID string) (string, bool)
}

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, st Store, sim SimulationInspector, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/debug/simulation", func(c *gin.Context) {
		if sim == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "simulation not running"})
			return
		}
		active := map[string]string{}
		for _, viewer := range sim.ActiveViewers() {
			if chatID, ok := sim.ActiveChat(viewer); ok {
				active[viewer] = chatID
			}
		}
		c.JSON(http.StatusOK, gin.H{"active_chats": active})
	})

	router.GET("/debug/users", func(c *gin.Context) {
		users := st.Users()
		online := 0
		for _, u := range users {
			if u.Status == models.PresenceOnline {
				online++
			}
		}
		c.JSON(http.StatusOK, gin.H{"users": len(users), "online": online})
	})
}
