package model

import (
	"math"

	"github.com/paulmach/orb"
)

// LatLng is a WGS84 coordinate in (latitude, longitude) order
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lon"`
}

// Point converts to orb's planar convention: x = longitude, y = latitude.
// Every geometry check goes through here, never swap axes by hand.
func (p LatLng) Point() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// LatLngFromPoint is the inverse of LatLng.Point
func LatLngFromPoint(p orb.Point) LatLng {
	return LatLng{Lat: p[1], Lng: p[0]}
}

// Valid reports whether the coordinate is a finite point on the globe
func (p LatLng) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Zone is a named region containers and collectors are assigned to.
// Boundary vertices are (lat, lon); ring closure is implicit and winding is unspecified.
type Zone struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Boundary []LatLng `json:"boundary"`
}

// OpenRing returns the boundary as an orb ring without a repeated closing vertex
func (z Zone) OpenRing() orb.Ring {
	n := len(z.Boundary)
	if n > 1 && z.Boundary[0] == z.Boundary[n-1] {
		n--
	}

	ring := make(orb.Ring, n)
	for i := 0; i < n; i++ {
		ring[i] = z.Boundary[i].Point()
	}
	return ring
}

// ClosedRing returns the boundary closed, as GeoJSON expects
func (z Zone) ClosedRing() orb.Ring {
	ring := z.OpenRing()
	if len(ring) == 0 {
		return ring
	}
	return append(ring, ring[0])
}

// Vertices returns the number of distinct ring vertices
func (z Zone) Vertices() int {
	return len(z.OpenRing())
}

// Clone returns a copy that shares no memory with z
func (z Zone) Clone() Zone {
	c := z
	c.Boundary = append([]LatLng(nil), z.Boundary...)
	return c
}

// ZoneIDs returns zone ids in input order
func ZoneIDs(zones []Zone) []int64 {
	ids := make([]int64, len(zones))
	for i, z := range zones {
		ids[i] = z.ID
	}
	return ids
}
