package routes

import (
	"net/http"

	"ecobins/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
)

// SetupUserHandlers registers the leaderboard and live points endpoints
func SetupUserHandlers(router *gin.RouterGroup, svc Services) {
	router.GET("/leaderboard", func(c *gin.Context) {
		limit, err := limitQuery(c, defaultLeaderboardLimit, maxLeaderboardLimit)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entries, err := svc.Leaderboard.Leaderboard(c.Request.Context(), actorFrom(c).Token, limit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
	})

	router.GET("/users/:id/points", func(c *gin.Context) {
		userID, err := model.ParseID(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		actor := actorFrom(c)
		if actor.Role != model.RoleAdmin && actor.UserID != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "points of other users are not visible"})
			return
		}

		total, ok := svc.Points.Get(userID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no points seen for user"})
			return
		}
		c.JSON(http.StatusOK, total)
	})
}
