package worker

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type Flusher interface {
	Flush(ctx context.Context) (int, error)
}

// StartPointsFlushWorker persists changed totals every interval and once more on shutdown
func StartPointsFlushWorker(ctx context.Context, f Flusher, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// ctx is already cancelled, give the final flush its own deadline
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				flush(flushCtx, f)
				cancel()
				return
			case <-ticker.C:
				flush(ctx, f)
			}
		}
	}()

	log.Infof("Points flush worker started with interval: %v", interval)
	return done
}

func flush(ctx context.Context, f Flusher) {
	n, err := f.Flush(ctx)
	if err != nil {
		log.Warnf("Points flush worker: %v", err)
		return
	}
	if n > 0 {
		log.Debugf("Points flush worker: saved %d totals", n)
	}
}
