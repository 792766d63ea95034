package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-pipeline/internal/common/clock"
)

func newMiniRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestIntervalMillis(t *testing.T) {
	assert.Equal(t, int64(6000), IntervalMillis(10))
	assert.Equal(t, int64(8572), IntervalMillis(7))
	assert.Equal(t, int64(60000), IntervalMillis(1))
}

func TestRedisLimiter_SpacesDispatches(t *testing.T) {
	client := newMiniRedis(t)
	fake := clock.NewFake(epoch)
	l := NewRedis(client, "test:spacing", 10, fake)

	var dispatches []time.Time
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Acquire(context.Background()))
		dispatches = append(dispatches, fake.Now())
	}

	for i := 1; i < len(dispatches); i++ {
		assert.GreaterOrEqual(t, dispatches[i].Sub(dispatches[i-1]), 6*time.Second)
	}
	assert.Equal(t, []time.Duration{6 * time.Second, 6 * time.Second, 6 * time.Second}, fake.Sleeps())
}

func TestRedisLimiter_SubMillisecondClockKeepsSpacing(t *testing.T) {
	client := newMiniRedis(t)
	// 8571.43ms interval at 7 rpm; start between two milliseconds.
	fake := clock.NewFake(epoch.Add(999 * time.Microsecond))
	l := NewRedis(client, "test:submilli", 7, fake)

	var dispatches []time.Time
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Acquire(context.Background()))
		dispatches = append(dispatches, fake.Now())
		fake.Advance(300 * time.Microsecond)
	}

	for i := 1; i < len(dispatches); i++ {
		gap := dispatches[i].Sub(dispatches[i-1])
		assert.GreaterOrEqual(t, int64(gap)*7, int64(time.Minute), "gap=%s", gap)
	}
}

func TestCeilMillis(t *testing.T) {
	assert.Equal(t, epoch.UnixMilli(), ceilMillis(epoch))
	assert.Equal(t, epoch.UnixMilli()+1, ceilMillis(epoch.Add(time.Nanosecond)))
	assert.Equal(t, epoch.UnixMilli()+1, ceilMillis(epoch.Add(999*time.Microsecond)))
}

func TestRedisLimiter_SharedKeyIsOneQuota(t *testing.T) {
	client := newMiniRedis(t)
	fake := clock.NewFake(epoch)

	first := NewRedis(client, "test:shared", 10, fake)
	second := NewRedis(client, "test:shared", 10, fake)

	require.NoError(t, first.Acquire(context.Background()))
	require.NoError(t, second.Acquire(context.Background()))

	assert.Equal(t, []time.Duration{6 * time.Second}, fake.Sleeps())
}

func TestRedisLimiter_SeparateKeysAreSeparateDomains(t *testing.T) {
	client := newMiniRedis(t)
	fake := clock.NewFake(epoch)

	require.NoError(t, NewRedis(client, "domain:a", 10, fake).Acquire(context.Background()))
	require.NoError(t, NewRedis(client, "domain:b", 10, fake).Acquire(context.Background()))

	assert.Empty(t, fake.Sleeps())
}

func TestRedisLimiter_DefaultKey(t *testing.T) {
	l := NewRedis(newMiniRedis(t), "", 10, nil)
	assert.Equal(t, DefaultKey, l.Key())
}

func TestRedisLimiter_RedisFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	fake := clock.NewFake(epoch)
	l := NewRedis(client, "test:down", 10, fake)

	mock.ExpectEvalSha(reserveSlot.Hash(), []string{"test:down"}, epoch.UnixMilli(), int64(6000), int64(12000)).
		SetErr(errors.New("connection refused"))

	err := l.Acquire(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserve rate limit slot")
	assert.NoError(t, mock.ExpectationsWereMet())
}
