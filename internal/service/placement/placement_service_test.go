package placement

import (
	"context"
	"errors"
	"math"
	"testing"

	"ecobins/internal/model"
	"ecobins/internal/service/zone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct{ r *zone.Resolver }

func (s staticResolver) Resolver() *zone.Resolver { return s.r }

type fakeScopes struct{}

func (fakeScopes) Placement(_ context.Context, actor model.Actor) (zone.Scope, bool, error) {
	switch actor.Role {
	case model.RoleAdmin:
		return zone.All(), true, nil
	case model.RoleCollector:
		return zone.Only(2), true, nil
	default:
		return zone.Scope{}, false, nil
	}
}

type fakeCreator struct {
	got []model.ContainerCreateRequest
	err error
}

func (f *fakeCreator) CreateContainer(_ context.Context, _ string, req model.ContainerCreateRequest) error {
	f.got = append(f.got, req)
	return f.err
}

type fakeRecorder struct {
	rows []*model.PlacementPG
	err  error
}

func (f *fakeRecorder) Save(_ context.Context, p *model.PlacementPG) error {
	f.rows = append(f.rows, p)
	return f.err
}

func (f *fakeRecorder) RecentByUser(_ context.Context, userID int64, limit int) ([]model.PlacementPG, error) {
	var out []model.PlacementPG
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, *f.rows[i])
		}
	}
	return out, nil
}

func square(id int64, lat, lng, side float64) model.Zone {
	return model.Zone{ID: id, Name: "zona", Boundary: []model.LatLng{
		{Lat: lat, Lng: lng}, {Lat: lat, Lng: lng + side}, {Lat: lat + side, Lng: lng + side}, {Lat: lat + side, Lng: lng},
	}}
}

func newService() (*PlacementService, *fakeCreator, *fakeRecorder) {
	// zone 1 and 2 overlap; zone 1 comes first
	r := zone.NewResolver([]model.Zone{square(1, 0, 0, 10), square(2, 0, 0, 10), square(3, 20, 20, 5)})
	creator := &fakeCreator{}
	recorder := &fakeRecorder{}
	return NewPlacementService(staticResolver{r}, fakeScopes{}, creator, recorder), creator, recorder
}

var (
	admin     = model.Actor{UserID: 1, Role: model.RoleAdmin, Token: "a"}
	collector = model.Actor{UserID: 7, Role: model.RoleCollector, Token: "c"}
	consumer  = model.Actor{UserID: 9, Role: model.RoleConsumer, Token: "u"}
)

func TestResolveUsesActorScope(t *testing.T) {
	s, _, recorder := newService()
	p := model.LatLng{Lat: 5, Lng: 5}

	z, err := s.Resolve(context.Background(), admin, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), z.ID, "earliest zone wins for an unrestricted actor")

	z, err = s.Resolve(context.Background(), collector, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), z.ID, "collector only sees assigned zones")

	_, err = s.Resolve(context.Background(), collector, model.LatLng{Lat: 22, Lng: 22})
	assert.ErrorIs(t, err, zone.ErrOutsideAllZones)

	assert.Empty(t, recorder.rows, "resolving alone is not audited")
}

func TestResolveRejects(t *testing.T) {
	s, _, recorder := newService()

	_, err := s.Resolve(context.Background(), consumer, model.LatLng{Lat: 5, Lng: 5})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Resolve(context.Background(), admin, model.LatLng{Lat: 91, Lng: 5})
	assert.ErrorIs(t, err, ErrInvalidPoint)

	_, err = s.Resolve(context.Background(), admin, model.LatLng{Lat: math.NaN(), Lng: 5})
	assert.ErrorIs(t, err, ErrInvalidPoint)

	_, err = s.Resolve(context.Background(), admin, model.LatLng{Lat: 50, Lng: 50})
	assert.ErrorIs(t, err, zone.ErrOutsideAllZones)

	assert.Empty(t, recorder.rows)
}

func TestPlaceForwardsResolvedZone(t *testing.T) {
	s, creator, recorder := newService()

	z, err := s.Place(context.Background(), collector, PlaceRequest{Name: "  Esquina  ", Point: model.LatLng{Lat: 3, Lng: 4}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), z.ID)

	require.Len(t, creator.got, 1)
	assert.Equal(t, model.ContainerCreateRequest{Name: "Esquina", ZoneID: 2, CapacityMax: DefaultCapacity, Lat: 3, Lng: 4}, creator.got[0])

	require.Len(t, recorder.rows, 1)
	assert.True(t, recorder.rows[0].Accepted)
	assert.Equal(t, int64(2), *recorder.rows[0].ZoneID)
	assert.Empty(t, recorder.rows[0].Reason)
}

func TestPlaceRecordsRejections(t *testing.T) {
	s, creator, recorder := newService()

	_, err := s.Place(context.Background(), admin, PlaceRequest{Name: "x", Point: model.LatLng{Lat: 50, Lng: 50}})
	assert.ErrorIs(t, err, zone.ErrOutsideAllZones)

	creator.err = errors.New("backend 500")
	_, err = s.Place(context.Background(), admin, PlaceRequest{Name: "x", Point: model.LatLng{Lat: 3, Lng: 4}})
	assert.ErrorContains(t, err, "backend 500")

	_, err = s.Place(context.Background(), consumer, PlaceRequest{Name: "x", Point: model.LatLng{Lat: 3, Lng: 4}})
	assert.ErrorIs(t, err, ErrForbidden)

	require.Len(t, recorder.rows, 2)

	outside := recorder.rows[0]
	assert.False(t, outside.Accepted)
	assert.Nil(t, outside.ZoneID)
	assert.Equal(t, zone.ErrOutsideAllZones.Error(), outside.Reason)

	failed := recorder.rows[1]
	assert.False(t, failed.Accepted, "container was never created")
	require.NotNil(t, failed.ZoneID)
	assert.Equal(t, int64(1), *failed.ZoneID)
	assert.Equal(t, "backend 500", failed.Reason)
}

func TestPlaceValidatesAndPropagates(t *testing.T) {
	s, creator, _ := newService()

	_, err := s.Place(context.Background(), admin, PlaceRequest{Point: model.LatLng{Lat: 3, Lng: 4}})
	assert.Error(t, err)

	_, err = s.Place(context.Background(), admin, PlaceRequest{Name: "x", CapacityMax: -1, Point: model.LatLng{Lat: 3, Lng: 4}})
	assert.Error(t, err)

	_, err = s.Place(context.Background(), admin, PlaceRequest{Name: "x", Point: model.LatLng{Lat: 50, Lng: 50}})
	assert.ErrorIs(t, err, zone.ErrOutsideAllZones)
	assert.Empty(t, creator.got)

	creator.err = errors.New("backend 500")
	_, err = s.Place(context.Background(), admin, PlaceRequest{Name: "x", Point: model.LatLng{Lat: 3, Lng: 4}})
	assert.ErrorContains(t, err, "backend 500")
}

func TestRecorderFailureDoesNotBlock(t *testing.T) {
	s, _, recorder := newService()
	recorder.err = errors.New("db down")

	z, err := s.Place(context.Background(), admin, PlaceRequest{Name: "x", Point: model.LatLng{Lat: 5, Lng: 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), z.ID)
	assert.Len(t, recorder.rows, 1)
}

func TestRecent(t *testing.T) {
	s, _, _ := newService()
	for i := 0; i < 3; i++ {
		_, _ = s.Place(context.Background(), admin, PlaceRequest{Name: "x", Point: model.LatLng{Lat: float64(i + 1), Lng: 1}})
	}
	_, _ = s.Place(context.Background(), collector, PlaceRequest{Name: "y", Point: model.LatLng{Lat: 5, Lng: 5}})

	rows, err := s.Recent(context.Background(), admin.UserID, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 3.0, rows[0].Lat)

	empty := NewPlacementService(nil, nil, nil, nil)
	rows, err = empty.Recent(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
