package zone

import (
	"testing"

	"ecobins/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square builds an axis-aligned zone from its south-west corner and side, in degrees
func square(id int64, lat, lng, side float64) model.Zone {
	return model.Zone{
		ID:   id,
		Name: "zone",
		Boundary: []model.LatLng{
			{Lat: lat, Lng: lng},
			{Lat: lat, Lng: lng + side},
			{Lat: lat + side, Lng: lng + side},
			{Lat: lat + side, Lng: lng},
		},
	}
}

func TestFindContainingZoneInsideConvex(t *testing.T) {
	zones := []model.Zone{square(1, 0, 0, 10), square(2, 20, 20, 10)}

	for _, p := range []model.LatLng{{Lat: 5, Lng: 5}, {Lat: 0.5, Lng: 9.5}, {Lat: 9.99, Lng: 0.01}} {
		z, ok := FindContainingZone(p, zones)
		require.True(t, ok, "point %v", p)
		assert.Equal(t, int64(1), z.ID)
	}

	z, ok := FindContainingZone(model.LatLng{Lat: 25, Lng: 21}, zones)
	require.True(t, ok)
	assert.Equal(t, int64(2), z.ID)
}

func TestFindContainingZoneOutsideAll(t *testing.T) {
	zones := []model.Zone{square(1, 0, 0, 10), square(2, 20, 20, 10)}

	for _, p := range []model.LatLng{{Lat: 15, Lng: 15}, {Lat: -1, Lng: 5}, {Lat: 5, Lng: 10.5}, {Lat: 31, Lng: 25}} {
		_, ok := FindContainingZone(p, zones)
		assert.False(t, ok, "point %v", p)
	}

	_, ok := FindContainingZone(model.LatLng{Lat: 5, Lng: 5}, nil)
	assert.False(t, ok)
}

func TestFindContainingZoneEarliestWins(t *testing.T) {
	big := square(1, 0, 0, 10)
	small := model.Zone{ID: 2, Boundary: []model.LatLng{
		{Lat: 4, Lng: 4}, {Lat: 4, Lng: 6}, {Lat: 5.5, Lng: 7}, {Lat: 6, Lng: 6}, {Lat: 6, Lng: 4},
	}}
	point := model.LatLng{Lat: 5, Lng: 5}

	z, ok := FindContainingZone(point, []model.Zone{big, small})
	require.True(t, ok)
	assert.Equal(t, int64(1), z.ID)

	z, ok = FindContainingZone(point, []model.Zone{small, big})
	require.True(t, ok)
	assert.Equal(t, int64(2), z.ID)

	r := NewResolver([]model.Zone{small, big})
	z, ok = r.Find(point)
	require.True(t, ok)
	assert.Equal(t, int64(2), z.ID)
}

func TestFindContainingZoneConcave(t *testing.T) {
	// L shape: the notch at the top right is outside
	l := model.Zone{ID: 1, Boundary: []model.LatLng{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 10}, {Lat: 4, Lng: 10}, {Lat: 4, Lng: 4}, {Lat: 10, Lng: 4}, {Lat: 10, Lng: 0},
	}}

	_, ok := FindContainingZone(model.LatLng{Lat: 7, Lng: 7}, []model.Zone{l})
	assert.False(t, ok)

	_, ok = FindContainingZone(model.LatLng{Lat: 2, Lng: 8}, []model.Zone{l})
	assert.True(t, ok)

	_, ok = FindContainingZone(model.LatLng{Lat: 8, Lng: 2}, []model.Zone{l})
	assert.True(t, ok)
}

func TestFindContainingZoneBoundaryIsInside(t *testing.T) {
	zones := []model.Zone{square(1, 0, 0, 10)}

	for _, p := range []model.LatLng{{Lat: 0, Lng: 5}, {Lat: 5, Lng: 10}, {Lat: 0, Lng: 0}, {Lat: 10, Lng: 10}} {
		_, ok := FindContainingZone(p, zones)
		assert.True(t, ok, "point %v", p)

		_, ok = NewResolver(zones).Find(p)
		assert.True(t, ok, "resolver point %v", p)
	}
}

func TestFindContainingZoneWindingAndClosure(t *testing.T) {
	clockwise := model.Zone{ID: 1, Boundary: []model.LatLng{
		{Lat: 0, Lng: 0}, {Lat: 10, Lng: 0}, {Lat: 10, Lng: 10}, {Lat: 0, Lng: 10}, {Lat: 0, Lng: 0},
	}}

	z, ok := FindContainingZone(model.LatLng{Lat: 3, Lng: 3}, []model.Zone{clockwise})
	require.True(t, ok)
	assert.Equal(t, int64(1), z.ID)
}

func TestInvalidGeometryExcludedAndReportedOnce(t *testing.T) {
	degenerate := model.Zone{ID: 9, Name: "linea", Boundary: []model.LatLng{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 10}, {Lat: 0, Lng: 0}}}
	zones := []model.Zone{degenerate, square(1, 0, 0, 10)}

	z, ok := FindContainingZone(model.LatLng{Lat: 5, Lng: 5}, zones)
	require.True(t, ok)
	assert.Equal(t, int64(1), z.ID)

	r := NewResolver(zones)
	diagnostics := r.Diagnostics()
	require.Len(t, diagnostics, 1)
	assert.Equal(t, int64(9), diagnostics[0].ZoneID)
	assert.Equal(t, 2, diagnostics[0].Vertices)
	assert.Contains(t, diagnostics[0].Error(), "linea")

	for i := 0; i < 3; i++ {
		_, ok := r.Find(model.LatLng{Lat: 5, Lng: 5})
		assert.True(t, ok)
	}
	assert.Len(t, r.Diagnostics(), 1)
	assert.Equal(t, 1, r.Len())
	assert.Len(t, r.Zones(), 2)

	assert.Len(t, ValidateZones(zones), 1)
}

func TestResolverMatchesFreeFunction(t *testing.T) {
	zones := []model.Zone{
		square(1, 0, 0, 6),
		square(2, 3, 3, 6),
		{ID: 3, Boundary: []model.LatLng{{Lat: 1, Lng: 8}, {Lat: 9, Lng: 12}, {Lat: 1, Lng: 12}}},
		{ID: 4, Boundary: []model.LatLng{{Lat: 1, Lng: 1}}},
	}
	r := NewResolver(zones)

	for lat := -1.0; lat <= 11; lat += 0.5 {
		for lng := -1.0; lng <= 13; lng += 0.5 {
			p := model.LatLng{Lat: lat, Lng: lng}
			want, wantOK := FindContainingZone(p, zones)
			got, gotOK := r.Find(p)

			require.Equal(t, wantOK, gotOK, "point %v", p)
			if wantOK {
				assert.Equal(t, want.ID, got.ID, "point %v", p)
			}
		}
	}
}

func TestResolverFindScoped(t *testing.T) {
	r := NewResolver([]model.Zone{square(1, 0, 0, 10), square(2, 0, 0, 10)})
	point := model.LatLng{Lat: 5, Lng: 5}

	z, ok := r.FindScoped(point, Only(2))
	require.True(t, ok)
	assert.Equal(t, int64(2), z.ID)

	_, ok = r.FindScoped(point, Only(3))
	assert.False(t, ok)

	_, ok = r.FindScoped(point, Scope{})
	assert.False(t, ok, "an empty scope resolves nothing")

	z, ok = r.FindScoped(point, All())
	require.True(t, ok)
	assert.Equal(t, int64(1), z.ID)
}

func TestResolverDoesNotAliasInput(t *testing.T) {
	zones := []model.Zone{square(1, 0, 0, 10)}
	r := NewResolver(zones)

	zones[0].Boundary[2] = model.LatLng{Lat: 1, Lng: 1}

	_, ok := r.Find(model.LatLng{Lat: 8, Lng: 8})
	assert.True(t, ok)
}

func TestCentroidRoundTrip(t *testing.T) {
	z := square(7, 40.41, -3.71, 0.02)
	centroid := model.LatLng{Lat: 40.42, Lng: -3.70}

	first, ok := FindContainingZone(centroid, []model.Zone{square(1, 0, 0, 1), z})
	require.True(t, ok)
	require.Equal(t, int64(7), first.ID)

	for i := 0; i < 5; i++ {
		again, ok := FindContainingZone(centroid, []model.Zone{first})
		require.True(t, ok)
		assert.Equal(t, first.ID, again.ID)
	}
}
