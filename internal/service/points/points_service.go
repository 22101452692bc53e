// Package points accumulates the live points events published after each deposit.
package points

import (
	"context"
	"fmt"
	"time"

	"ecobins/internal/model"
	"ecobins/internal/service/storage"

	log "github.com/sirupsen/logrus"
)

// TotalsStore persists totals across restarts
type TotalsStore interface {
	SaveTotals(ctx context.Context, totals []model.PointsTotal) error
	LoadTotals(ctx context.Context) ([]model.PointsTotal, error)
}

type PointsService struct {
	storage *storage.ShardedMemoryStorage[int64, model.PointsTotal]
	store   TotalsStore
	now     func() time.Time
}

// NewPointsService accepts a nil store, totals then live in memory only
func NewPointsService(store TotalsStore) *PointsService {
	return &PointsService{
		storage: storage.NewShardedMemoryStorage[int64, model.PointsTotal](32),
		store:   store,
		now:     time.Now,
	}
}

// InitService loads the persisted totals
func (s *PointsService) InitService(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	totals, err := s.store.LoadTotals(ctx)
	if err != nil {
		return fmt.Errorf("failed to load points totals: %w", err)
	}
	for _, t := range totals {
		s.storage.Set(t.UserID, t)
	}
	// freshly loaded totals are already persisted
	s.storage.TakeDirty()

	log.Infof("Loaded %d points totals", len(totals))
	return nil
}

// Apply adds one event to the user's running total
func (s *PointsService) Apply(ev model.PointsEvent) (model.PointsTotal, error) {
	if ev.UserID <= 0 {
		return model.PointsTotal{}, fmt.Errorf("points event without user id")
	}

	now := s.now()
	return s.storage.Update(ev.UserID, func(t model.PointsTotal, _ bool) model.PointsTotal {
		t.UserID = ev.UserID
		t.Points += ev.Points
		t.Kg += ev.Kg
		t.Events++
		t.UpdatedAt = now
		return t
	}), nil
}

// Get returns the total seen for a user since the gateway started or was restored
func (s *PointsService) Get(userID int64) (model.PointsTotal, bool) {
	return s.storage.Get(userID)
}

func (s *PointsService) Count() int {
	return s.storage.Count()
}

// Flush persists the totals changed since the last flush
func (s *PointsService) Flush(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}

	dirty := s.storage.TakeDirty()
	if len(dirty) == 0 {
		return 0, nil
	}

	totals := make([]model.PointsTotal, 0, len(dirty))
	keys := make([]int64, 0, len(dirty))
	for k, t := range dirty {
		totals = append(totals, t)
		keys = append(keys, k)
	}

	if err := s.store.SaveTotals(ctx, totals); err != nil {
		s.storage.MarkDirty(keys)
		return 0, fmt.Errorf("failed to save points totals: %w", err)
	}
	return len(totals), nil
}
