package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupMainHandlers registers the unauthenticated endpoints
func SetupMainHandlers(router *gin.RouterGroup, snapshots SnapshotReader) {
	router.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok", "snapshot_ready": snapshots.Ready()}
		if at, stale := snapshots.RefreshedAt(); !at.IsZero() {
			body["refreshed_at"] = at
			body["stale"] = stale
		}
		c.JSON(http.StatusOK, body)
	})
}
