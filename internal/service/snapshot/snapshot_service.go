// Package snapshot holds the latest zones and containers fetched from the backend
// together with the spatial resolver built from them.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ecobins/internal/model"
	"ecobins/internal/service/zone"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrNotReady = errors.New("no snapshot loaded yet")

// Source is the system of record for zones and containers
type Source interface {
	ZoneGeometries(ctx context.Context, token string) ([]model.Zone, error)
	Containers(ctx context.Context, token string) ([]model.Container, error)
}

// Cache keeps the last good snapshot outside the process
type Cache interface {
	SaveZones(ctx context.Context, zones []model.Zone) error
	SaveContainers(ctx context.Context, containers []model.Container) error
	LoadZones(ctx context.Context) ([]model.Zone, time.Time, bool, error)
	LoadContainers(ctx context.Context) ([]model.Container, time.Time, bool, error)
}

type SnapshotService struct {
	source Source
	cache  Cache // may be nil
	token  string

	mu          sync.RWMutex
	zones       []model.Zone
	containers  []model.Container
	resolver    *zone.Resolver
	refreshedAt time.Time
	stale       bool

	// invalid zones already logged, so each is reported once
	reported map[int64]bool
}

func NewSnapshotService(source Source, cache Cache, serviceToken string) *SnapshotService {
	return &SnapshotService{
		source:   source,
		cache:    cache,
		token:    serviceToken,
		resolver: zone.NewResolver(nil),
		reported: make(map[int64]bool),
	}
}

// Refresh fetches zones and containers concurrently and swaps them in atomically.
// When the backend fails and nothing is loaded yet, the cached snapshot is used.
func (s *SnapshotService) Refresh(ctx context.Context) error {
	var zones []model.Zone
	var containers []model.Container

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		zones, err = s.source.ZoneGeometries(gctx, s.token)
		return err
	})
	g.Go(func() (err error) {
		containers, err = s.source.Containers(gctx, s.token)
		return err
	})

	if err := g.Wait(); err != nil {
		if !s.Ready() {
			if restored := s.restoreFromCache(ctx); restored {
				return fmt.Errorf("backend refresh failed, serving cached snapshot: %w", err)
			}
		}
		return fmt.Errorf("backend refresh failed: %w", err)
	}

	s.install(zones, containers, time.Now(), false)

	if s.cache != nil {
		if err := s.cache.SaveZones(ctx, zones); err != nil {
			log.Warnf("Failed to cache zones: %v", err)
		}
		if err := s.cache.SaveContainers(ctx, containers); err != nil {
			log.Warnf("Failed to cache containers: %v", err)
		}
	}
	return nil
}

func (s *SnapshotService) restoreFromCache(ctx context.Context) bool {
	if s.cache == nil {
		return false
	}

	zones, savedAt, ok, err := s.cache.LoadZones(ctx)
	if err != nil || !ok {
		if err != nil {
			log.Warnf("Failed to read cached zones: %v", err)
		}
		return false
	}
	containers, _, ok, err := s.cache.LoadContainers(ctx)
	if err != nil || !ok {
		if err != nil {
			log.Warnf("Failed to read cached containers: %v", err)
		}
		return false
	}

	log.Warnf("Restored cached snapshot from %s: %d zones, %d containers", savedAt.Format(time.RFC3339), len(zones), len(containers))
	s.install(zones, containers, savedAt, true)
	return true
}

func (s *SnapshotService) install(zones []model.Zone, containers []model.Container, at time.Time, stale bool) {
	resolver := zone.NewResolver(zones)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range resolver.Diagnostics() {
		if s.reported[d.ZoneID] {
			continue
		}
		s.reported[d.ZoneID] = true
		log.WithField("zone", d.ZoneID).Warn(d.Error())
	}

	s.zones = resolver.Zones()
	s.containers = append(make([]model.Container, 0, len(containers)), containers...)
	s.resolver = resolver
	s.refreshedAt = at
	s.stale = stale

	log.Debugf("Snapshot installed: %d zones (%d usable), %d containers", len(zones), resolver.Len(), len(containers))
}

// Ready reports whether any snapshot has been installed
func (s *SnapshotService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.refreshedAt.IsZero()
}

// Resolver returns the resolver of the current snapshot. It is immutable and safe to keep.
func (s *SnapshotService) Resolver() *zone.Resolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolver
}

// Zones returns a copy of the zones in backend order
func (s *SnapshotService) Zones() []model.Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Zone, len(s.zones))
	for i, z := range s.zones {
		out[i] = z.Clone()
	}
	return out
}

// Containers returns a copy of the containers in backend order
func (s *SnapshotService) Containers() []model.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Container, len(s.containers))
	for i, c := range s.containers {
		out[i] = c
		if c.Position != nil {
			p := *c.Position
			out[i].Position = &p
		}
	}
	return out
}

// RefreshedAt returns when the current data was fetched and whether it came from the cache
func (s *SnapshotService) RefreshedAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt, s.stale
}

// ApplyContainerUpdate patches a container in place until the next refresh replaces it.
// It returns false when the container is unknown.
func (s *SnapshotService) ApplyContainerUpdate(u model.ContainerUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.containers {
		if s.containers[i].ID == u.ID {
			u.Apply(&s.containers[i])
			return true
		}
	}
	return false
}
