// Package redis puts a Redis hot tier in front of a durable result cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/honeycarbs/jobsearch/internal/domain"
	jobdomain "github.com/honeycarbs/jobsearch/internal/domain/job"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

const keyPrefix = "jobsearch:search:"

// DefaultMaxAge bounds how long Redis keeps an entry regardless of lookups
const DefaultMaxAge = 6 * time.Hour

var _ jobdomain.ResultCache = (*TieredCache)(nil)

// envelope is what is stored in Redis; created_at drives freshness checks
type envelope struct {
	CreatedAt time.Time `json:"created_at"`
	Payload   []byte    `json:"payload"`
}

// TieredCache answers from Redis when it holds a fresh entry and otherwise
// from the cold cache, promoting cold hits into Redis. The cold cache is the
// source of truth: a Redis failure degrades to a cold lookup.
type TieredCache struct {
	hot    redis.Cmdable
	cold   jobdomain.ResultCache
	maxAge time.Duration
	clock  func() time.Time
	logger *logging.Logger
}

// NewTieredCache builds the cache; maxAge <= 0 means DefaultMaxAge
func NewTieredCache(hot redis.Cmdable, cold jobdomain.ResultCache, maxAge time.Duration, clock func() time.Time, logger *logging.Logger) (*TieredCache, error) {
	if hot == nil {
		return nil, fmt.Errorf("redis.TieredCache: redis client is required")
	}
	if cold == nil {
		return nil, fmt.Errorf("redis.TieredCache: cold cache is required")
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &TieredCache{
		hot:    hot,
		cold:   cold,
		maxAge: maxAge,
		clock:  clock,
		logger: logger.Named("hot_cache"),
	}, nil
}

func (c *TieredCache) Lookup(ctx context.Context, key domain.SearchKey, ttl time.Duration) ([]byte, bool, error) {
	cutoff := c.clock().Add(-ttl)

	if env, ok := c.getHot(ctx, key); ok && !env.CreatedAt.Before(cutoff) {
		return env.Payload, true, nil
	}

	payload, ok, err := c.cold.Lookup(ctx, key, ttl)
	if err != nil || !ok {
		return nil, false, err
	}

	// the cold record is at least as new as cutoff; stamping the promoted
	// copy with cutoff never makes it look fresher than it is
	c.setHot(ctx, key, envelope{CreatedAt: cutoff, Payload: payload})
	return payload, true, nil
}

func (c *TieredCache) Store(ctx context.Context, key domain.SearchKey, payload []byte) error {
	if err := c.cold.Store(ctx, key, payload); err != nil {
		return err
	}
	c.setHot(ctx, key, envelope{CreatedAt: c.clock(), Payload: payload})
	return nil
}

func (c *TieredCache) getHot(ctx context.Context, key domain.SearchKey) (envelope, bool) {
	raw, err := c.hot.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return envelope{}, false
	}
	if err != nil {
		c.logger.Warn("redis get failed, using cold cache", "err", err, "query", key.Query)
		return envelope{}, false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("discarding undecodable redis entry", "err", err, "query", key.Query)
		return envelope{}, false
	}
	return env, true
}

func (c *TieredCache) setHot(ctx context.Context, key domain.SearchKey, env envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		c.logger.Warn("encode redis entry", "err", err)
		return
	}
	if err := c.hot.Set(ctx, redisKey(key), raw, c.maxAge).Err(); err != nil {
		c.logger.Warn("redis set failed", "err", err, "query", key.Query)
	}
}

func redisKey(key domain.SearchKey) string {
	return keyPrefix + key.Hash()
}
