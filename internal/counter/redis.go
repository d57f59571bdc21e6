package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/vyrodovalexey/avarouter/internal/observability"
)

var (
	redisCounterOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "avarouter",
			Subsystem: "counter",
			Name:      "redis_operations_total",
			Help:      "Total number of Redis hit counter operations",
		},
		[]string{"operation", "status"},
	)

	redisCounterOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "avarouter",
			Subsystem: "counter",
			Name:      "redis_operation_duration_seconds",
			Help:      "Duration of Redis hit counter operations in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// ErrCounterClosed is returned by operations on a closed Redis counter.
var ErrCounterClosed = errors.New("counter closed")

// seedAndIncrementScript seeds the key with the start value on first use
// and increments it atomically.
// KEYS[1] = key
// ARGV[1] = start value
var seedAndIncrementScript = redis.NewScript(`
	redis.call('SETNX', KEYS[1], ARGV[1])
	return redis.call('INCR', KEYS[1])
`)

// RedisConfig holds configuration for the Redis counter.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Key      string
	Start    int64

	DialTimeout       time.Duration
	ConnectionRetries int
	RetryBackoff      time.Duration

	Logger observability.Logger
}

// DefaultRedisConfig returns a RedisConfig with default values.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Address:           "localhost:6379",
		Key:               "avarouter:hits",
		DialTimeout:       5 * time.Second,
		ConnectionRetries: 3,
		RetryBackoff:      200 * time.Millisecond,
	}
}

// Redis is a Counter shared between processes through a Redis key.
type Redis struct {
	client *redis.Client
	key    string
	start  int64
	logger observability.Logger

	mu     sync.Mutex
	closed bool
}

// NewRedis connects to Redis, retrying with linear backoff until the
// server answers PING or the retries are exhausted.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	defaults := DefaultRedisConfig()
	if cfg.Key == "" {
		cfg.Key = defaults.Key
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaults.DialTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaults.RetryBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger()
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	if err := ping(ctx, client, cfg); err != nil {
		_ = client.Close()
		return nil, err
	}

	c := NewRedisWithClient(client, cfg.Key, cfg.Start)
	c.logger = cfg.Logger
	return c, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, key string, start int64) *Redis {
	if key == "" {
		key = DefaultRedisConfig().Key
	}
	return &Redis{
		client: client,
		key:    key,
		start:  start,
		logger: observability.NopLogger(),
	}
}

func ping(ctx context.Context, client *redis.Client, cfg RedisConfig) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.ConnectionRetries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		lastErr = client.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			if attempt > 0 {
				cfg.Logger.Info("redis connection established after retry",
					observability.String("address", cfg.Address),
					observability.Int("attempt", attempt+1),
				)
			}
			return nil
		}

		if attempt == cfg.ConnectionRetries {
			break
		}

		cfg.Logger.Debug("redis connection failed, retrying",
			observability.String("address", cfg.Address),
			observability.Int("attempt", attempt+1),
			observability.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("connecting to redis: %w", ctx.Err())
		case <-time.After(time.Duration(attempt+1) * cfg.RetryBackoff):
		}
	}
	return fmt.Errorf("failed to connect to redis after %d attempts: %w", cfg.ConnectionRetries+1, lastErr)
}

// Increment implements Counter.
func (r *Redis) Increment(ctx context.Context) (int64, error) {
	if err := r.check(ctx); err != nil {
		return 0, err
	}

	start := time.Now()
	result, err := seedAndIncrementScript.Run(ctx, r.client, []string{r.key}, r.start).Result()
	redisCounterOperationDuration.WithLabelValues("increment").Observe(time.Since(start).Seconds())

	if err != nil {
		redisCounterOperationsTotal.WithLabelValues("increment", "error").Inc()
		return 0, fmt.Errorf("redis incr error: %w", err)
	}

	n, ok := result.(int64)
	if !ok {
		redisCounterOperationsTotal.WithLabelValues("increment", "error").Inc()
		return 0, fmt.Errorf("redis script returned unexpected type: %T", result)
	}

	redisCounterOperationsTotal.WithLabelValues("increment", "success").Inc()
	return n, nil
}

// Value implements Counter. A missing key reports the start value.
func (r *Redis) Value(ctx context.Context) (int64, error) {
	if err := r.check(ctx); err != nil {
		return 0, err
	}

	start := time.Now()
	val, err := r.client.Get(ctx, r.key).Result()
	redisCounterOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())

	if errors.Is(err, redis.Nil) {
		redisCounterOperationsTotal.WithLabelValues("get", "not_found").Inc()
		return r.start, nil
	}
	if err != nil {
		redisCounterOperationsTotal.WithLabelValues("get", "error").Inc()
		return 0, fmt.Errorf("redis get error: %w", err)
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		redisCounterOperationsTotal.WithLabelValues("get", "error").Inc()
		return 0, fmt.Errorf("failed to parse counter value: %w", err)
	}

	redisCounterOperationsTotal.WithLabelValues("get", "success").Inc()
	return n, nil
}

// Close implements Counter. Close is idempotent.
func (r *Redis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.client.Close()
}

func (r *Redis) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error before redis call: %w", err)
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrCounterClosed
	}
	return nil
}
