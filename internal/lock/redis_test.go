package lock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 5 * time.Second

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, testTTL, 10*time.Millisecond), mr
}

func TestRedisLockerSetsTTLAndReleases(t *testing.T) {
	l, mr := newRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, mr.Exists("k"))
	assert.Equal(t, testTTL, mr.TTL("k"))

	unlock()
	assert.False(t, mr.Exists("k"))
}

func TestRedisLockerWaitsForHolder(t *testing.T) {
	l, _ := newRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	var released atomic.Bool
	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		unlock2, err := l.Lock(ctx, "k")
		if err == nil {
			assert.True(t, released.Load(), "acquired while still held")
			unlock2()
		}
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	released.Store(true)
	unlock()

	require.NoError(t, <-done)
}

func TestRedisLockerOtherKeysDoNotBlock(t *testing.T) {
	l, _ := newRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlock2, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlock2()
}

func TestRedisLockerGivesUpWithContext(t *testing.T) {
	l, mr := newRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	t.Run("deadline while waiting", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := l.Lock(ctx, "k")
		assert.ErrorIs(t, err, ErrLockNotAcquired)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("already cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := l.Lock(ctx, "other")
		assert.ErrorIs(t, err, ErrLockNotAcquired)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, mr.Exists("other"))
	})
}

func TestRedisLockerStaleReleaseKeepsNewHolder(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	unlockOld, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	oldToken, err := mr.Get("k")
	require.NoError(t, err)

	mr.FastForward(testTTL + time.Second)
	require.False(t, mr.Exists("k"), "lock should expire after its ttl")

	unlockNew, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	newToken, err := mr.Get("k")
	require.NoError(t, err)
	require.NotEqual(t, oldToken, newToken)

	unlockOld()
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, newToken, got)

	unlockNew()
	assert.False(t, mr.Exists("k"))
}
