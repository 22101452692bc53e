package storage

import (
	"fmt"
	"sync"
	"time"
)

// Storage is a concurrent keyed store with dirty tracking for periodic flushes
type Storage[K comparable, V any] interface {
	Set(key K, value V)
	Get(key K) (V, bool)
	Update(key K, fn func(current V, exists bool) V) V
	Delete(key K) bool
	GetAllValues() []V
	TakeDirty() map[K]V
	Count() int
}

// ShardedMemoryStorage spreads keys over independently locked shards
type ShardedMemoryStorage[K comparable, V any] struct {
	shards     []*shardData[K, V]
	shardMask  int
	keyToShard func(K) int
}

type shardData[K comparable, V any] struct {
	data       map[K]V
	mutex      sync.RWMutex
	dirty      map[K]bool
	lastUpdate map[K]time.Time
}

// NewShardedMemoryStorage rounds shardCount up to a power of two
func NewShardedMemoryStorage[K comparable, V any](shardCount int) *ShardedMemoryStorage[K, V] {
	realShardCount := 1
	for realShardCount < shardCount {
		realShardCount *= 2
	}

	shards := make([]*shardData[K, V], realShardCount)
	for i := range shards {
		shards[i] = &shardData[K, V]{
			data:       make(map[K]V),
			dirty:      make(map[K]bool),
			lastUpdate: make(map[K]time.Time),
		}
	}

	mask := realShardCount - 1
	return &ShardedMemoryStorage[K, V]{
		shards:    shards,
		shardMask: mask,
		keyToShard: func(key K) int {
			switch k := any(key).(type) {
			case string:
				return int(fnv1a(k)) & mask
			case int:
				return k & mask
			case int64:
				return int(k) & mask
			default:
				return int(fnv1a(fmt.Sprintf("%v", key))) & mask
			}
		},
	}
}

// FNV-1a
func fnv1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func (s *ShardedMemoryStorage[K, V]) getShard(key K) *shardData[K, V] {
	return s.shards[s.keyToShard(key)]
}

func (s *ShardedMemoryStorage[K, V]) Set(key K, value V) {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	shard.data[key] = value
	shard.dirty[key] = true
	shard.lastUpdate[key] = time.Now()
}

func (s *ShardedMemoryStorage[K, V]) Get(key K) (V, bool) {
	shard := s.getShard(key)

	shard.mutex.RLock()
	defer shard.mutex.RUnlock()

	value, exists := shard.data[key]
	return value, exists
}

// Update applies fn under the shard lock and stores its result
func (s *ShardedMemoryStorage[K, V]) Update(key K, fn func(current V, exists bool) V) V {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	current, exists := shard.data[key]
	next := fn(current, exists)
	shard.data[key] = next
	shard.dirty[key] = true
	shard.lastUpdate[key] = time.Now()
	return next
}

func (s *ShardedMemoryStorage[K, V]) Delete(key K) bool {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	if _, exists := shard.data[key]; !exists {
		return false
	}

	delete(shard.data, key)
	delete(shard.dirty, key)
	delete(shard.lastUpdate, key)
	return true
}

func (s *ShardedMemoryStorage[K, V]) GetAllValues() []V {
	result := make([]V, 0, s.Count())

	for _, shard := range s.shards {
		shard.mutex.RLock()
		for _, v := range shard.data {
			result = append(result, v)
		}
		shard.mutex.RUnlock()
	}

	return result
}

// TakeDirty returns the objects changed since the last call and clears their flags
func (s *ShardedMemoryStorage[K, V]) TakeDirty() map[K]V {
	result := make(map[K]V)

	for _, shard := range s.shards {
		shard.mutex.Lock()
		for k := range shard.dirty {
			if v, exists := shard.data[k]; exists {
				result[k] = v
			}
			delete(shard.dirty, k)
		}
		shard.mutex.Unlock()
	}

	return result
}

// MarkDirty flags keys again, used when a flush failed
func (s *ShardedMemoryStorage[K, V]) MarkDirty(keys []K) {
	for _, k := range keys {
		shard := s.getShard(k)
		shard.mutex.Lock()
		if _, exists := shard.data[k]; exists {
			shard.dirty[k] = true
		}
		shard.mutex.Unlock()
	}
}

// LastUpdate returns when key was last written
func (s *ShardedMemoryStorage[K, V]) LastUpdate(key K) (time.Time, bool) {
	shard := s.getShard(key)

	shard.mutex.RLock()
	defer shard.mutex.RUnlock()

	t, ok := shard.lastUpdate[key]
	return t, ok
}

func (s *ShardedMemoryStorage[K, V]) Count() int {
	count := 0
	for _, shard := range s.shards {
		shard.mutex.RLock()
		count += len(shard.data)
		shard.mutex.RUnlock()
	}
	return count
}
