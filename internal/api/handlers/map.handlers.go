package routes

import (
	"net/http"

	"ecobins/internal/model"
	"ecobins/internal/service/zone"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SetupMapHandlers registers the dashboard map endpoint
func SetupMapHandlers(router *gin.RouterGroup, svc Services) {
	router.GET("/map", func(c *gin.Context) {
		if !requireSnapshot(c, svc.Snapshots) {
			return
		}

		sc, err := svc.Scopes.Assigned(c.Request.Context(), actorFrom(c))
		if err != nil {
			abortWithError(c, err)
			return
		}

		zones := sc.Zones(svc.Snapshots.Zones())
		containers := sc.Containers(svc.Snapshots.Containers())
		c.JSON(http.StatusOK, BuildMap(zones, containers))
	})
}

// BuildMap renders zones as polygons and positioned containers as points.
// Zones too small to form a polygon are left out.
func BuildMap(zones []model.Zone, containers []model.Container) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	summaries := zone.Summarize(containers)

	for _, z := range zones {
		if len(z.OpenRing()) < zone.MinVertices {
			continue
		}
		s := summaries[z.ID]

		f := geojson.NewFeature(orb.Polygon{z.ClosedRing()})
		f.ID = z.ID
		f.Properties["kind"] = "zone"
		f.Properties["name"] = z.Name
		f.Properties["area_m2"] = zoneArea(z)
		f.Properties["containers"] = s.Total
		f.Properties["full"] = s.Full
		f.Properties["locked"] = s.Locked
		fc.Append(f)
	}

	for _, ct := range containers {
		if ct.Position == nil {
			continue
		}
		status := zone.ClassifyStatus(ct)

		f := geojson.NewFeature(ct.Position.Point())
		f.ID = ct.ID
		f.Properties["kind"] = "container"
		f.Properties["name"] = ct.Name
		f.Properties["zone_id"] = ct.ZoneID
		f.Properties["status"] = status
		f.Properties["color"] = status.Color()
		f.Properties["current_load"] = ct.CurrentLoad
		f.Properties["capacity_max"] = ct.CapacityMax
		fc.Append(f)
	}

	return fc
}
