package counter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Counter = (*Memory)(nil)
	_ Counter = (*Redis)(nil)
)

func TestMemory_Increment(t *testing.T) {
	t.Parallel()

	c := NewMemory(1000000)
	ctx := context.Background()

	n, err := c.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000001), n)

	v, err := c.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000001), v)
	assert.NoError(t, c.Close())
}

func TestMemory_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewMemory(0)
	ctx := context.Background()

	const workers, perWorker = 8, 250
	var wg sync.WaitGroup
	seen := make(chan int64, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				n, err := c.Increment(ctx)
				if err == nil {
					seen <- n
				}
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]struct{})
	for n := range seen {
		unique[n] = struct{}{}
	}
	assert.Len(t, unique, workers*perWorker)

	v, err := c.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), v)
}

func TestMemory_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewMemory(0)
	_, err := c.Increment(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = c.Value(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func newMiniredisCounter(t *testing.T, start int64) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := DefaultRedisConfig()
	cfg.Address = mr.Addr()
	cfg.Start = start

	c, err := NewRedis(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedis_Increment(t *testing.T) {
	t.Parallel()

	c, mr := newMiniredisCounter(t, 1000000)
	ctx := context.Background()

	v, err := c.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), v)

	n, err := c.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000001), n)

	n, err = c.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000002), n)

	stored, err := mr.Get(DefaultRedisConfig().Key)
	require.NoError(t, err)
	assert.Equal(t, "1000002", stored)
}

func TestRedis_SharedAcrossClients(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	a := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "hits", 0)
	b := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "hits", 0)
	defer func() { _ = a.Close() }()
	defer func() { _ = b.Close() }()

	ctx := context.Background()
	_, err := a.Increment(ctx)
	require.NoError(t, err)
	n, err := b.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRedis_ValueParseError(t *testing.T) {
	t.Parallel()

	c, mr := newMiniredisCounter(t, 0)
	require.NoError(t, mr.Set(DefaultRedisConfig().Key, "not-a-number"))

	_, err := c.Value(context.Background())
	assert.Error(t, err)
}

func TestRedis_Closed(t *testing.T) {
	t.Parallel()

	c, _ := newMiniredisCounter(t, 0)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Increment(context.Background())
	assert.True(t, errors.Is(err, ErrCounterClosed))
}

func TestRedis_CancelledContext(t *testing.T) {
	t.Parallel()

	c, _ := newMiniredisCounter(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Increment(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = c.Value(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRedis_ConnectionFailure(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := DefaultRedisConfig()
	cfg.Address = addr
	cfg.DialTimeout = 100 * time.Millisecond
	cfg.ConnectionRetries = 1
	cfg.RetryBackoff = 10 * time.Millisecond

	c, err := NewRedis(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "after 2 attempts")
}
