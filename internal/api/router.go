package api

import (
	routes "ecobins/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine, svc routes.Services) {
	r.Use(gin.Recovery(), routes.RequestLogger())

	// Setup main handlers
	routes.SetupMainHandlers(r.Group(""), svc.Snapshots)

	// API group, every route needs a bearer token
	api := r.Group("/api", routes.AuthRequired(svc.Verifier))

	routes.SetupMapHandlers(api, svc)
	routes.SetupContainerHandlers(api, svc)
	routes.SetupZoneHandlers(api, svc)
	routes.SetupUserHandlers(api, svc)
}
