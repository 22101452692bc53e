// Package scope decides which zones an actor may see and act on.
package scope

import (
	"context"
	"fmt"
	"time"

	"ecobins/internal/model"
	"ecobins/internal/service/storage"
	"ecobins/internal/service/zone"
)

// AssignmentSource returns the zones assigned to a collector
type AssignmentSource interface {
	CollectorZones(ctx context.Context, token string, collectorID int64) ([]model.Zone, error)
}

type ScopeService struct {
	source      AssignmentSource
	assignments *storage.ShardedMemoryStorage[int64, []int64]
	ttl         time.Duration
	now         func() time.Time
}

// NewScopeService caches collector assignments for ttl
func NewScopeService(source AssignmentSource, ttl time.Duration) *ScopeService {
	return &ScopeService{
		source:      source,
		assignments: storage.NewShardedMemoryStorage[int64, []int64](16),
		ttl:         ttl,
		now:         time.Now,
	}
}

// Assigned returns the zones a collector works in. Other roles see every zone.
func (s *ScopeService) Assigned(ctx context.Context, actor model.Actor) (zone.Scope, error) {
	if actor.Role != model.RoleCollector {
		return zone.All(), nil
	}

	if ids, ok := s.cached(actor.UserID); ok {
		return zone.Only(ids...), nil
	}

	zones, err := s.source.CollectorZones(ctx, actor.Token, actor.UserID)
	if err != nil {
		return zone.Scope{}, fmt.Errorf("failed to load zones of collector %d: %w", actor.UserID, err)
	}

	ids := model.ZoneIDs(zones)
	s.assignments.Set(actor.UserID, ids)
	return zone.Only(ids...), nil
}

// Placement returns the zones the actor may place containers in
func (s *ScopeService) Placement(ctx context.Context, actor model.Actor) (zone.Scope, bool, error) {
	switch {
	case !actor.Role.CanPlaceContainers():
		return zone.Scope{}, false, nil
	case actor.Role == model.RoleAdmin:
		return zone.All(), true, nil
	}

	sc, err := s.Assigned(ctx, actor)
	return sc, true, err
}

func (s *ScopeService) cached(userID int64) ([]int64, bool) {
	ids, ok := s.assignments.Get(userID)
	if !ok {
		return nil, false
	}
	at, ok := s.assignments.LastUpdate(userID)
	if !ok || s.now().Sub(at) > s.ttl {
		return nil, false
	}
	return ids, true
}
