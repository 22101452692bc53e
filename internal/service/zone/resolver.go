// Package zone resolves map points to zones and classifies containers for the dashboard views.
//
// Containment rule: the boundary ring is implicitly closed, winding is ignored, and a
// point lying exactly on an edge or vertex counts as inside. When zones overlap the
// earliest zone in the caller's sequence wins, so callers pass zones in priority order.
package zone

import (
	"errors"
	"fmt"

	"ecobins/internal/model"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MinVertices is the smallest ring a zone boundary may have
const MinVertices = 3

// minExtent pads degenerate bounds so the R-tree accepts them
const minExtent = 1e-9

// ErrOutsideAllZones is returned when a placement point falls in no candidate zone
var ErrOutsideAllZones = errors.New("point is outside all known zones")

// InvalidZoneGeometryError reports a zone that was left out of containment tests
type InvalidZoneGeometryError struct {
	ZoneID   int64
	Name     string
	Vertices int
}

func (e *InvalidZoneGeometryError) Error() string {
	return fmt.Sprintf("zone %d (%s) has %d boundary vertices, need at least %d",
		e.ZoneID, e.Name, e.Vertices, MinVertices)
}

// FindContainingZone returns the first zone in zones whose polygon contains point.
// Zones with fewer than MinVertices vertices are skipped.
func FindContainingZone(point model.LatLng, zones []model.Zone) (model.Zone, bool) {
	p := point.Point()
	for _, z := range zones {
		ring := z.OpenRing()
		if len(ring) < MinVertices {
			continue
		}
		if ringContains(ring, ring.Bound(), p) {
			return z, true
		}
	}
	return model.Zone{}, false
}

// ValidateZones returns one error per zone that cannot take part in containment
func ValidateZones(zones []model.Zone) []*InvalidZoneGeometryError {
	var invalid []*InvalidZoneGeometryError
	for _, z := range zones {
		if n := z.Vertices(); n < MinVertices {
			invalid = append(invalid, &InvalidZoneGeometryError{ZoneID: z.ID, Name: z.Name, Vertices: n})
		}
	}
	return invalid
}

func ringContains(ring orb.Ring, bound orb.Bound, p orb.Point) bool {
	if !bound.Contains(p) {
		return false
	}
	if onBoundary(ring, p) {
		return true
	}
	return planar.RingContains(ring, p)
}

// onBoundary reports whether p lies on an edge or vertex of ring
func onBoundary(ring orb.Ring, p orb.Point) bool {
	for i := range ring {
		j := (i + 1) % len(ring)
		if planar.DistanceFromSegment(ring[i], ring[j], p) == 0 {
			return true
		}
	}
	return false
}

// zoneSpatial is a prepared zone with its spatial information for R-tree indexing
type zoneSpatial struct {
	index int // priority, position in the input sequence
	zone  model.Zone
	ring  orb.Ring
	bound orb.Bound
}

// Bounds implements the rtreego.Spatial interface
func (z *zoneSpatial) Bounds() rtreego.Rect {
	width := z.bound.Max[0] - z.bound.Min[0]
	height := z.bound.Max[1] - z.bound.Min[1]
	if width < minExtent {
		width = minExtent
	}
	if height < minExtent {
		height = minExtent
	}

	rect, _ := rtreego.NewRect(
		rtreego.Point{z.bound.Min[0], z.bound.Min[1]},
		[]float64{width, height},
	)
	return rect
}

// Resolver answers repeated point queries against one zone list.
// It copies its input and is safe for concurrent reads.
type Resolver struct {
	zones   []model.Zone
	entries []*zoneSpatial
	index   *rtreego.Rtree
	invalid []*InvalidZoneGeometryError
}

// NewResolver prepares zones, kept in the given priority order
func NewResolver(zones []model.Zone) *Resolver {
	r := &Resolver{
		zones: make([]model.Zone, len(zones)),
		index: rtreego.NewTree(2, 25, 50),
	}

	for i, z := range zones {
		z = z.Clone()
		r.zones[i] = z

		ring := z.OpenRing()
		if len(ring) < MinVertices {
			r.invalid = append(r.invalid, &InvalidZoneGeometryError{ZoneID: z.ID, Name: z.Name, Vertices: len(ring)})
			continue
		}

		entry := &zoneSpatial{index: i, zone: z, ring: ring, bound: ring.Bound()}
		r.entries = append(r.entries, entry)
		r.index.Insert(entry)
	}

	return r
}

// Find returns the highest-priority zone containing point
func (r *Resolver) Find(point model.LatLng) (model.Zone, bool) {
	return r.FindScoped(point, All())
}

// FindScoped is Find restricted to the zones in scope
func (r *Resolver) FindScoped(point model.LatLng, scope Scope) (model.Zone, bool) {
	if !scope.All && len(scope.IDs) == 0 {
		return model.Zone{}, false
	}

	p := point.Point()
	searchRect, err := rtreego.NewRect(
		rtreego.Point{p[0] - minExtent, p[1] - minExtent},
		[]float64{2 * minExtent, 2 * minExtent},
	)
	if err != nil {
		return model.Zone{}, false
	}

	var best *zoneSpatial
	for _, item := range r.index.SearchIntersect(searchRect) {
		entry := item.(*zoneSpatial)
		if best != nil && entry.index > best.index {
			continue
		}
		if !scope.Contains(entry.zone.ID) {
			continue
		}
		if ringContains(entry.ring, entry.bound, p) {
			best = entry
		}
	}

	if best == nil {
		return model.Zone{}, false
	}
	return best.zone.Clone(), true
}

// Diagnostics lists the zones excluded from containment, once per resolver
func (r *Resolver) Diagnostics() []*InvalidZoneGeometryError {
	return append([]*InvalidZoneGeometryError(nil), r.invalid...)
}

// Zones returns a copy of every zone, valid or not, in priority order
func (r *Resolver) Zones() []model.Zone {
	zones := make([]model.Zone, len(r.zones))
	for i, z := range r.zones {
		zones[i] = z.Clone()
	}
	return zones
}

// Len returns the number of zones usable for containment
func (r *Resolver) Len() int {
	return len(r.entries)
}
