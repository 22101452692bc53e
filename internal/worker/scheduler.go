package worker

import (
	"context"

	"ecobins/internal/config"

	log "github.com/sirupsen/logrus"
)

// StartAllWorkers starts every background worker and returns a channel closed once all have stopped
func StartAllWorkers(ctx context.Context, cfg config.Config, snapshots Refresher, points Flusher) <-chan struct{} {
	log.Info("Starting all workers...")

	workers := []<-chan struct{}{
		StartRefreshWorker(ctx, snapshots, cfg.RefreshEvery),
		StartPointsFlushWorker(ctx, points, config.PointsFlushInterval),
	}

	log.Info("All workers started")

	done := make(chan struct{})
	go func() {
		for _, w := range workers {
			<-w
		}
		close(done)
	}()
	return done
}
