// Package ratelimit counts requests per client in fixed windows.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Limiter interface {
	// Allow records one hit for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	start time.Time
	count int
}

type memoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	buckets map[string]*window
	current time.Time
}

// NewMemory keeps counters in process. Counters are lost on restart and not
// shared between instances.
func NewMemory(limit int, win time.Duration) Limiter {
	return newMemory(limit, win, time.Now)
}

func newMemory(limit int, win time.Duration, now func() time.Time) *memoryLimiter {
	return &memoryLimiter{
		limit:   limit,
		window:  win,
		now:     now,
		buckets: make(map[string]*window),
	}
}

func (m *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	start := m.now().Truncate(m.window)

	m.mu.Lock()
	defer m.mu.Unlock()

	// new window: drop every stale bucket at once
	if !start.Equal(m.current) {
		for k, b := range m.buckets {
			if !b.start.Equal(start) {
				delete(m.buckets, k)
			}
		}
		m.current = start
	}

	b, ok := m.buckets[key]
	if !ok {
		b = &window{start: start}
		m.buckets[key] = b
	}
	b.count++
	return b.count <= m.limit, nil
}

type redisLimiter struct {
	client redis.Cmdable
	name   string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedis shares counters across instances through INCR on a per-window key.
func NewRedis(client redis.Cmdable, name string, limit int, win time.Duration) Limiter {
	return &redisLimiter{client: client, name: name, limit: limit, window: win, now: time.Now}
}

func (r *redisLimiter) generateKey(key string, start time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", r.name, key, start.Unix())
}

func (r *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	start := r.now().Truncate(r.window)
	k := r.generateKey(key, start)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, r.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter %s: %w", k, err)
	}
	return incr.Val() <= int64(r.limit), nil
}

// NewRedisClient pings addr so a bad REDIS_ADDR shows up at startup.
func NewRedisClient(ctx context.Context, addr string, logger *logrus.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not reach redis at %s: %w", addr, err)
	}
	logger.Infof("Rate limiter using redis at %s", addr)
	return client, nil
}
