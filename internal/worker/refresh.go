package worker

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type Refresher interface {
	Refresh(ctx context.Context) error
}

// StartRefreshWorker refreshes once immediately, then every interval until ctx is done
func StartRefreshWorker(ctx context.Context, r Refresher, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		refresh := func() {
			start := time.Now()
			if err := r.Refresh(ctx); err != nil {
				log.Warnf("Refresh worker: %v", err)
				return
			}
			log.Debugf("Refresh worker: snapshot refreshed in %v", time.Since(start))
		}

		refresh()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh()
			}
		}
	}()

	log.Infof("Refresh worker started with interval: %v", interval)
	return done
}
