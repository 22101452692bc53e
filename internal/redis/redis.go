package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ecobins/internal/model"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	zonesKey      = "ecobins:zones"
	containersKey = "ecobins:containers"
	pointsKey     = "ecobins:points"
)

// Init parses the URL and pings the server
func Init(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.Info("Successfully connected to Redis")
	return client, nil
}

// SnapshotCache keeps the last good backend snapshot so a restart can serve the map while the backend is down
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

type snapshotRecord[T any] struct {
	Items   []T       `json:"items"`
	SavedAt time.Time `json:"saved_at"`
}

func (c *SnapshotCache) SaveZones(ctx context.Context, zones []model.Zone) error {
	return save(ctx, c, zonesKey, zones)
}

func (c *SnapshotCache) SaveContainers(ctx context.Context, containers []model.Container) error {
	return save(ctx, c, containersKey, containers)
}

// LoadZones returns false when nothing is cached
func (c *SnapshotCache) LoadZones(ctx context.Context) ([]model.Zone, time.Time, bool, error) {
	return load[model.Zone](ctx, c, zonesKey)
}

func (c *SnapshotCache) LoadContainers(ctx context.Context) ([]model.Container, time.Time, bool, error) {
	return load[model.Container](ctx, c, containersKey)
}

func save[T any](ctx context.Context, c *SnapshotCache, key string, items []T) error {
	data, err := json.Marshal(snapshotRecord[T]{Items: items, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func load[T any](ctx context.Context, c *SnapshotCache, key string) ([]T, time.Time, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, err
	}

	var rec snapshotRecord[T]
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return rec.Items, rec.SavedAt, true, nil
}

// PointsStore mirrors the live points totals into a hash keyed by user id
type PointsStore struct {
	client *redis.Client
}

func NewPointsStore(client *redis.Client) *PointsStore {
	return &PointsStore{client: client}
}

// SaveTotals writes all totals in one pipeline
func (s *PointsStore) SaveTotals(ctx context.Context, totals []model.PointsTotal) error {
	if len(totals) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, t := range totals {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		pipe.HSet(ctx, pointsKey, strconv.FormatInt(t.UserID, 10), data)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// LoadTotals reads every stored total
func (s *PointsStore) LoadTotals(ctx context.Context) ([]model.PointsTotal, error) {
	fields, err := s.client.HGetAll(ctx, pointsKey).Result()
	if err != nil {
		return nil, err
	}

	totals := make([]model.PointsTotal, 0, len(fields))
	for field, raw := range fields {
		var t model.PointsTotal
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			log.WithField("user", field).Warnf("Skipping unreadable points total: %v", err)
			continue
		}
		totals = append(totals, t)
	}
	return totals, nil
}
