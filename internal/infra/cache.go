package infra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the breaker in front of Redis. While it is open,
// catalog reads skip the cache and go straight to PostgreSQL instead of
// paying a network timeout on every request.
type BreakerConfig struct {
	FailureThreshold uint32        // consecutive failures before tripping
	OpenTimeout      time.Duration // time spent open before a trial request
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 3, OpenTimeout: 30 * time.Second}
}

// Cache is a JSON cache-aside helper over Redis. Every call goes through the
// circuit breaker; a nil *Cache behaves as an always-empty cache.
type Cache struct {
	rdb *redis.Client
	cb  *gobreaker.CircuitBreaker
}

func NewCache(rdb *redis.Client, cfg BreakerConfig) *Cache {
	if rdb == nil {
		return nil
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	threshold := cfg.FailureThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A miss is a normal answer, not a Redis failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cache breaker state changed")
		},
	})
	return &Cache{rdb: rdb, cb: cb}
}

// GetJSON decodes key into dst. A miss reports (false, nil).
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil {
		return false, nil
	}
	raw, err := c.cb.Execute(func() (interface{}, error) {
		return c.rdb.Get(ctx, key).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw.([]byte), dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Set(ctx, key, b, ttl).Err()
	})
	return err
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Del(ctx, keys...).Err()
	})
	return err
}

// State reports the breaker state for the health endpoint: closed, open,
// half-open, or disabled when there is no Redis.
func (c *Cache) State() string {
	if c == nil {
		return "disabled"
	}
	return c.cb.State().String()
}
