package routes

import (
	"net/http"
	"strconv"

	"ecobins/internal/model"
	"ecobins/internal/service/placement"
	"ecobins/internal/service/zone"

	"github.com/gin-gonic/gin"
)

type containerView struct {
	model.Container
	Status model.Status `json:"status"`
	Color  string       `json:"color"`
}

type createContainerBody struct {
	Name        string   `json:"nombre" binding:"required"`
	CapacityMax float64  `json:"capacidad_maxima"`
	Lat         *float64 `json:"lat" binding:"required"`
	Lng         *float64 `json:"lon" binding:"required"`
}

// SetupContainerHandlers registers the container listing and creation endpoints
func SetupContainerHandlers(router *gin.RouterGroup, svc Services) {
	router.GET("/containers", func(c *gin.Context) {
		if !requireSnapshot(c, svc.Snapshots) {
			return
		}
		actor := actorFrom(c)

		mine, err := boolQuery(c, "mine", actor.Role == model.RoleCollector)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		actionable, err := boolQuery(c, "actionable", false)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		containers := svc.Snapshots.Containers()
		if mine {
			sc, err := svc.Scopes.Assigned(c.Request.Context(), actor)
			if err != nil {
				abortWithError(c, err)
				return
			}
			containers = sc.Containers(containers)
		}
		if actionable {
			containers = zone.FilterActionable(containers)
		}

		origin, hasOrigin, err := pointQuery(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if hasOrigin {
			containers = zone.SortByDistance(containers, origin)
		}

		views := make([]containerView, len(containers))
		for i, ct := range containers {
			status := zone.ClassifyStatus(ct)
			views[i] = containerView{Container: ct, Status: status, Color: status.Color()}
		}

		at, stale := svc.Snapshots.RefreshedAt()
		c.JSON(http.StatusOK, gin.H{"containers": views, "refreshed_at": at, "stale": stale})
	})

	router.POST("/containers", func(c *gin.Context) {
		if !requireSnapshot(c, svc.Snapshots) {
			return
		}

		var body createContainerBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		z, err := svc.Placements.Place(c.Request.Context(), actorFrom(c), placement.PlaceRequest{
			Name:        body.Name,
			CapacityMax: body.CapacityMax,
			Point:       model.LatLng{Lat: *body.Lat, Lng: *body.Lng},
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"zone": z})
	})
}

func boolQuery(c *gin.Context, key string, def bool) (bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}

// pointQuery reads the optional lat/lon pair, both or neither must be present
func pointQuery(c *gin.Context) (model.LatLng, bool, error) {
	rawLat, hasLat := c.GetQuery("lat")
	rawLng, hasLng := c.GetQuery("lon")
	if !hasLat && !hasLng {
		return model.LatLng{}, false, nil
	}

	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lng, errLng := strconv.ParseFloat(rawLng, 64)
	p := model.LatLng{Lat: lat, Lng: lng}
	if !hasLat || !hasLng || errLat != nil || errLng != nil || !p.Valid() {
		return model.LatLng{}, false, placement.ErrInvalidPoint
	}
	return p, true, nil
}
