package cache

import (
	"context"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// StatsCache keeps running study counters for the researcher monitor.
// Counters are informational; the sink streams stay the authoritative record.
type StatsCache interface {
	Incr(ctx context.Context, field string) error
	Snapshot(ctx context.Context) (map[string]int64, error)
}

const statsKey = "study:stats"

type statsCache struct {
	client *redis.Client
}

// NewStatsCache creates a redis hash backed stats cache
func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{client: client}
}

func (c *statsCache) Incr(ctx context.Context, field string) error {
	return c.client.HIncrBy(ctx, statsKey, field, 1).Err()
}

func (c *statsCache) Snapshot(ctx context.Context) (map[string]int64, error) {
	raw, err := c.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[field] = n
	}
	return out, nil
}

// MemoryStats is the in-process StatsCache
type MemoryStats struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMemoryStats() *MemoryStats {
	return &MemoryStats{counters: make(map[string]int64)}
}

func (s *MemoryStats) Incr(ctx context.Context, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[field]++
	return nil
}

func (s *MemoryStats) Snapshot(ctx context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out, nil
}
