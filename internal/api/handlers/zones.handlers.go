package routes

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"ecobins/internal/model"
	"ecobins/internal/service/zone"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

var errInvalidLimit = errors.New("invalid limit")

type zoneView struct {
	model.Zone
	AreaM2  float64      `json:"area_m2"`
	Summary zone.Summary `json:"summary"`
}

type invalidZoneView struct {
	ZoneID   int64  `json:"zone_id"`
	Name     string `json:"name"`
	Vertices int    `json:"vertices"`
	Error    string `json:"error"`
}

type pointBody struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lon" binding:"required"`
}

// SetupZoneHandlers registers the zone listing and placement endpoints
func SetupZoneHandlers(router *gin.RouterGroup, svc Services) {
	router.GET("/zones", func(c *gin.Context) {
		if !requireSnapshot(c, svc.Snapshots) {
			return
		}

		sc, err := svc.Scopes.Assigned(c.Request.Context(), actorFrom(c))
		if err != nil {
			abortWithError(c, err)
			return
		}

		summaries := zone.Summarize(svc.Snapshots.Containers())
		zones := sc.Zones(svc.Snapshots.Zones())
		views := make([]zoneView, len(zones))
		for i, z := range zones {
			views[i] = zoneView{Zone: z, AreaM2: zoneArea(z), Summary: summaries[z.ID]}
		}

		invalid := make([]invalidZoneView, 0)
		for _, d := range svc.Snapshots.Resolver().Diagnostics() {
			if sc.Contains(d.ZoneID) {
				invalid = append(invalid, invalidZoneView{ZoneID: d.ZoneID, Name: d.Name, Vertices: d.Vertices, Error: d.Error()})
			}
		}

		c.JSON(http.StatusOK, gin.H{"zones": views, "invalid": invalid})
	})

	router.POST("/placements/resolve", func(c *gin.Context) {
		if !requireSnapshot(c, svc.Snapshots) {
			return
		}

		var body pointBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		z, err := svc.Placements.Resolve(c.Request.Context(), actorFrom(c), model.LatLng{Lat: *body.Lat, Lng: *body.Lng})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"zone": z})
	})

	router.GET("/placements", func(c *gin.Context) {
		limit, err := limitQuery(c, 20, 100)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rows, err := svc.Placements.Recent(c.Request.Context(), actorFrom(c).UserID, limit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"placements": rows})
	})
}

// limitQuery reads ?limit=, clamped to max
func limitQuery(c *gin.Context, def, max int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errInvalidLimit
	}
	if limit > max {
		limit = max
	}
	return limit, nil
}

// zoneArea is the geodesic area in square metres, 0 for unusable boundaries
func zoneArea(z model.Zone) float64 {
	if z.Vertices() < zone.MinVertices {
		return 0
	}
	return math.Abs(geo.Area(orb.Polygon{z.ClosedRing()}))
}
