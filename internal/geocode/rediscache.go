// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wneessen/addressparts/internal/logger"
)

const redisKeyPrefix = "addressparts:geocode:"

// RedisClient is the subset of the go-redis client used by RedisCachedGeocoder.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCachedGeocoder wraps a Geocoder and caches its responses in Redis, so that several
// processes can share one cache. Expiry is left to Redis. A failing Redis never fails a
// lookup, the provider is queried directly instead.
type RedisCachedGeocoder struct {
	coder   Geocoder
	client  RedisClient
	logger  *logger.Logger
	ttlHit  time.Duration
	ttlMiss time.Duration
}

func NewRedisCachedGeocoder(coder Geocoder, client RedisClient, log *logger.Logger, ttlHit, ttlMiss time.Duration) *RedisCachedGeocoder {
	return &RedisCachedGeocoder{
		coder:   coder,
		client:  client,
		logger:  log,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
	}
}

func (c *RedisCachedGeocoder) Name() string {
	return "redis cache using " + c.coder.Name()
}

func (c *RedisCachedGeocoder) Geocode(ctx context.Context, address string, opts Options) (Response, error) {
	key := geocodeKey(c.coder.Name(), address, opts)
	return c.lookup(ctx, key, func() (Response, error) {
		return c.coder.Geocode(ctx, address, opts)
	})
}

func (c *RedisCachedGeocoder) Reverse(ctx context.Context, coords Coordinate, opts Options) (Response, error) {
	key := reverseKey(c.coder.Name(), coords, opts)
	return c.lookup(ctx, key, func() (Response, error) {
		return c.coder.Reverse(ctx, coords, opts)
	})
}

func (c *RedisCachedGeocoder) lookup(ctx context.Context, key cacheKey, fetch func() (Response, error)) (Response, error) {
	redisKey := redisCacheKey(key)

	data, err := c.client.Get(ctx, redisKey).Bytes()
	switch {
	case err == nil:
		var resp Response
		if err = json.Unmarshal(data, &resp); err == nil {
			resp.CacheHit = true
			return resp, nil
		}
		c.logger.Warn("failed to decode cached geocoding response", slog.String("key", redisKey), logger.Err(err))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("failed to read from redis cache", slog.String("key", redisKey), logger.Err(err))
	}

	resp, err := fetch()
	if err != nil {
		return resp, err
	}

	ttl := c.ttlHit
	if !resp.OK() {
		ttl = c.ttlMiss
	}
	data, err = json.Marshal(resp)
	if err != nil {
		c.logger.Warn("failed to encode geocoding response for caching", logger.Err(err))
		return resp, nil
	}
	if err = c.client.Set(ctx, redisKey, data, ttl).Err(); err != nil {
		c.logger.Warn("failed to write to redis cache", slog.String("key", redisKey), logger.Err(err))
	}

	return resp, nil
}

// redisCacheKey returns the prefixed SHA-256 hex digest of the cache key.
func redisCacheKey(key cacheKey) string {
	sum := sha256.Sum256([]byte(key.String()))
	return redisKeyPrefix + hex.EncodeToString(sum[:])
}
