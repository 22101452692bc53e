package config

import "time"

// Worker intervals
const (
	// DefaultRefreshInterval defines how often zones and containers are re-fetched from the backend
	DefaultRefreshInterval = 20 * time.Second

	// SnapshotCacheTTL defines how long a fetched snapshot stays usable in Redis as a fallback
	SnapshotCacheTTL = 10 * time.Minute

	// ShutdownTimeout bounds the graceful HTTP shutdown
	ShutdownTimeout = 10 * time.Second
)

// PointsFlushInterval defines how often changed points totals are written to Redis
const PointsFlushInterval = 5 * time.Second
