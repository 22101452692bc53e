package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"ecobins/internal/api"
	routes "ecobins/internal/api/handlers"
	"ecobins/internal/auth"
	"ecobins/internal/backend"
	"ecobins/internal/config"
	"ecobins/internal/live"
	"ecobins/internal/logging"
	"ecobins/internal/postgres"
	"ecobins/internal/redis"
	"ecobins/internal/server"
	"ecobins/internal/service/placement"
	"ecobins/internal/service/points"
	"ecobins/internal/service/scope"
	"ecobins/internal/service/snapshot"
	"ecobins/internal/worker"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	db, cache := initializeDatabaseAndCache(cfg)
	defer closeConnections(db, cache)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, snapshots, pointsService := initializeServices(ctx, cfg, db, cache)

	workersDone := worker.StartAllWorkers(ctx, cfg, snapshots, pointsService)

	subscriber := live.NewSubscriber(cfg.MQTTBroker, cfg.MQTTClientID, pointsService, snapshots)
	if err := subscriber.Start(); err != nil {
		log.Errorf("Live updates disabled: %v", err)
	}

	reportMemoryStats(ctx)

	srv := runAPIServer(cfg, svc)

	<-ctx.Done()
	log.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Errorf("Server shutdown: %v", err)
	}
	subscriber.Stop()
	<-workersDone
}

// initializeDatabaseAndCache connects to Postgres and Redis. Either may be missing, the gateway then runs without it.
func initializeDatabaseAndCache(cfg config.Config) (*gorm.DB, *goredis.Client) {
	db, err := postgres.Init(cfg.DBUrl)
	if err != nil {
		log.Warnf("PostgreSQL unavailable, placement audit disabled: %v", err)
		db = nil
	}

	cache, err := redis.Init(cfg.RedisUrl)
	if err != nil {
		log.Warnf("Redis unavailable, snapshot cache and points persistence disabled: %v", err)
		cache = nil
	}

	return db, cache
}

func initializeServices(ctx context.Context, cfg config.Config, db *gorm.DB, cache *goredis.Client) (routes.Services, *snapshot.SnapshotService, *points.PointsService) {
	client := backend.NewClient(cfg.BackendUrl, cfg.BackendTimeout)

	var snapshotCache snapshot.Cache
	var totalsStore points.TotalsStore
	if cache != nil {
		snapshotCache = redis.NewSnapshotCache(cache, config.SnapshotCacheTTL)
		totalsStore = redis.NewPointsStore(cache)
	}

	var recorder placement.Recorder
	if db != nil {
		recorder = postgres.NewPlacementRepository(db)
	}

	snapshots := snapshot.NewSnapshotService(client, snapshotCache, cfg.ServiceToken)
	scopes := scope.NewScopeService(client, cfg.RefreshEvery)

	pointsService := points.NewPointsService(totalsStore)
	if err := pointsService.InitService(ctx); err != nil {
		log.Warnf("Starting with empty points totals: %v", err)
	}

	svc := routes.Services{
		Verifier:    auth.NewVerifier(cfg.JWTSecret),
		Snapshots:   snapshots,
		Scopes:      scopes,
		Placements:  placement.NewPlacementService(snapshots, scopes, client, recorder),
		Points:      pointsService,
		Leaderboard: client,
	}
	return svc, snapshots, pointsService
}

func runAPIServer(cfg config.Config, svc routes.Services) *server.Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	api.SetupRouter(r, svc)

	srv := server.NewServer(cfg.Port, r, cfg.CORSOrigins)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("API server: %v", err)
		}
	}()
	return srv
}

func reportMemoryStats(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				log.Debugf("Alloc = %v MiB, Sys = %v MiB, NumGC = %v, goroutines = %d",
					m.Alloc/1024/1024, m.Sys/1024/1024, m.NumGC, runtime.NumGoroutine())
			}
		}
	}()
}

func closeConnections(db *gorm.DB, cache *goredis.Client) {
	if db != nil {
		if err := postgres.Close(db); err != nil {
			log.Errorf("Error closing PostgreSQL connection: %v", err)
		}
	}
	if cache != nil {
		if err := cache.Close(); err != nil {
			log.Errorf("Error closing Redis connection: %v", err)
		}
	}
	log.Info("Connections closed")
}
