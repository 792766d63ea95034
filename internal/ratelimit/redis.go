package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lead-pipeline/internal/common/clock"
	"lead-pipeline/internal/common/metrics"
)

// DefaultKey is the Redis key used when none is configured.
const DefaultKey = "lead-pipeline:ratelimit:apollo"

// reserveSlot atomically reads the last granted slot, computes the next one
// and stores it. Times are unix milliseconds. The key outlives the reserved
// slot by ARGV[3] so queued reservations never expire early.
var reserveSlot = redis.NewScript(`
local last = tonumber(redis.call('GET', KEYS[1]) or '0')
local now = tonumber(ARGV[1])
local interval = tonumber(ARGV[2])
local slot = now
if last > 0 and last + interval > slot then
  slot = last + interval
end
redis.call('SET', KEYS[1], string.format('%d', slot), 'PX', slot - now + tonumber(ARGV[3]))
return slot
`)

// RedisLimiter shares one dispatch schedule between every process using the same key.
type RedisLimiter struct {
	client     redis.Scripter
	key        string
	intervalMs int64
	ttlMs      int64
	clock      clock.Clock
}

// NewRedis returns a limiter whose slot lives in Redis under key.
func NewRedis(client redis.Scripter, key string, requestsPerMinute int, clk clock.Clock) *RedisLimiter {
	if clk == nil {
		clk = clock.Real{}
	}
	if key == "" {
		key = DefaultKey
	}
	intervalMs := IntervalMillis(requestsPerMinute)
	ttl := 2 * intervalMs
	if ttl < 1000 {
		ttl = 1000
	}
	return &RedisLimiter{
		client:     client,
		key:        key,
		intervalMs: intervalMs,
		ttlMs:      ttl,
		clock:      clk,
	}
}

// IntervalMillis is Interval rounded up to whole milliseconds.
func IntervalMillis(requestsPerMinute int) int64 {
	iv := Interval(requestsPerMinute)
	return int64((iv + time.Millisecond - 1) / time.Millisecond)
}

func (l *RedisLimiter) Key() string {
	return l.key
}

func (l *RedisLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Slots are whole milliseconds: round now up so every dispatch happens at
	// or after its slot, then wait until the slot itself.
	now := l.clock.Now()
	nowMs := ceilMillis(now)
	slot, err := reserveSlot.Run(ctx, l.client, []string{l.key}, nowMs, l.intervalMs, l.ttlMs).Int64()
	if err != nil {
		return fmt.Errorf("reserve rate limit slot: %w", err)
	}

	wait := time.UnixMilli(slot).Sub(now)
	metrics.RateLimitWait.WithLabelValues("redis").Observe(wait.Seconds())
	if wait <= 0 {
		return nil
	}
	return l.clock.Sleep(ctx, wait)
}

func ceilMillis(t time.Time) int64 {
	ms := t.UnixMilli()
	if time.UnixMilli(ms).Before(t) {
		ms++
	}
	return ms
}
