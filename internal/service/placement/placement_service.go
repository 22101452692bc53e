// Package placement resolves map clicks to zones and creates containers in them.
package placement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecobins/internal/model"
	"ecobins/internal/service/zone"
	"ecobins/internal/util"

	log "github.com/sirupsen/logrus"
)

var (
	ErrForbidden    = errors.New("role may not place containers")
	ErrInvalidPoint = errors.New("invalid coordinates")
)

// DefaultCapacity matches the backend default for a new container
const DefaultCapacity = 100.0

type Recorder interface {
	Save(ctx context.Context, p *model.PlacementPG) error
	RecentByUser(ctx context.Context, userID int64, limit int) ([]model.PlacementPG, error)
}

type Creator interface {
	CreateContainer(ctx context.Context, token string, req model.ContainerCreateRequest) error
}

type ScopeProvider interface {
	Placement(ctx context.Context, actor model.Actor) (zone.Scope, bool, error)
}

type ResolverProvider interface {
	Resolver() *zone.Resolver
}

// PlaceRequest is a new container dropped on the map
type PlaceRequest struct {
	Name        string
	CapacityMax float64
	Point       model.LatLng
}

type PlacementService struct {
	resolvers ResolverProvider
	scopes    ScopeProvider
	creator   Creator
	recorder  Recorder // may be nil
	now       func() time.Time
}

func NewPlacementService(resolvers ResolverProvider, scopes ScopeProvider, creator Creator, recorder Recorder) *PlacementService {
	return &PlacementService{
		resolvers: resolvers,
		scopes:    scopes,
		creator:   creator,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Resolve finds the zone a container placed at point would belong to.
// Only zones in the actor's placement scope are considered. Nothing is recorded.
func (s *PlacementService) Resolve(ctx context.Context, actor model.Actor, point model.LatLng) (model.Zone, error) {
	if !point.Valid() {
		return model.Zone{}, ErrInvalidPoint
	}

	sc, allowed, err := s.scopes.Placement(ctx, actor)
	if err != nil {
		return model.Zone{}, err
	}
	if !allowed {
		return model.Zone{}, ErrForbidden
	}

	z, ok := s.resolvers.Resolver().FindScoped(point, sc)
	if !ok {
		return model.Zone{}, zone.ErrOutsideAllZones
	}
	return z, nil
}

// Place resolves the zone, creates the container in the backend and records the outcome
func (s *PlacementService) Place(ctx context.Context, actor model.Actor, req PlaceRequest) (model.Zone, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Zone{}, fmt.Errorf("container name is required")
	}
	if req.CapacityMax < 0 {
		return model.Zone{}, fmt.Errorf("capacity must not be negative")
	}
	capacity := req.CapacityMax
	if capacity == 0 {
		capacity = DefaultCapacity
	}

	z, err := s.Resolve(ctx, actor, req.Point)
	if errors.Is(err, zone.ErrOutsideAllZones) {
		s.record(ctx, actor, req.Point, nil, false, err.Error())
	}
	if err != nil {
		return model.Zone{}, err
	}

	err = s.creator.CreateContainer(ctx, actor.Token, model.ContainerCreateRequest{
		Name:        name,
		ZoneID:      z.ID,
		CapacityMax: capacity,
		Lat:         req.Point.Lat,
		Lng:         req.Point.Lng,
	})
	if err != nil {
		s.record(ctx, actor, req.Point, &z.ID, false, err.Error())
		return model.Zone{}, fmt.Errorf("failed to create container in zone %d: %w", z.ID, err)
	}

	s.record(ctx, actor, req.Point, &z.ID, true, "")
	log.WithFields(log.Fields{"user": actor.UserID, "zone": z.ID}).Infof("Container %q placed", name)
	return z, nil
}

// Recent lists the latest placement attempts of a user
func (s *PlacementService) Recent(ctx context.Context, userID int64, limit int) ([]model.PlacementPG, error) {
	if s.recorder == nil {
		return []model.PlacementPG{}, nil
	}
	return s.recorder.RecentByUser(ctx, userID, limit)
}

// record stores the audit row; failures never block the placement
func (s *PlacementService) record(ctx context.Context, actor model.Actor, point model.LatLng, zoneID *int64, accepted bool, reason string) {
	if s.recorder == nil {
		return
	}

	row := &model.PlacementPG{
		ID:        util.ShortUUID(),
		UserID:    actor.UserID,
		Role:      actor.Role,
		Lat:       point.Lat,
		Lng:       point.Lng,
		ZoneID:    zoneID,
		Accepted:  accepted,
		Reason:    reason,
		CreatedAt: s.now(),
	}
	if err := s.recorder.Save(ctx, row); err != nil {
		log.WithField("user", actor.UserID).Warnf("Failed to record placement: %v", err)
	}
}
