// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// coordPrecision is the precision used to quantize coordinates (0.0001 degrees ≈ 11 m)
const coordPrecision = 1e-4

type cacheKey struct {
	Provider string
	Reverse  bool
	LatQ     int32
	LonQ     int32
	Address  string
	Options  string
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s|%t|%d|%d|%s|%s", k.Provider, k.Reverse, k.LatQ, k.LonQ, k.Address, k.Options)
}

type cacheEntry struct {
	Response Response
	Expiry   time.Time
}

// CachedGeocoder wraps a Geocoder and caches its responses. Responses with a status other
// than OK are kept for ttlMiss, successful ones for ttlHit. Errors are never cached.
type CachedGeocoder struct {
	coder   Geocoder
	ttlHit  time.Duration
	ttlMiss time.Duration

	mu    sync.RWMutex
	cache map[cacheKey]cacheEntry
}

func NewCachedGeocoder(coder Geocoder, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	return &CachedGeocoder{
		coder:   coder,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
		cache:   make(map[cacheKey]cacheEntry),
	}
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string, opts Options) (Response, error) {
	key := geocodeKey(c.coder.Name(), address, opts)
	return c.lookup(key, func() (Response, error) {
		return c.coder.Geocode(ctx, address, opts)
	})
}

func (c *CachedGeocoder) Reverse(ctx context.Context, coords Coordinate, opts Options) (Response, error) {
	key := reverseKey(c.coder.Name(), coords, opts)
	return c.lookup(key, func() (Response, error) {
		return c.coder.Reverse(ctx, coords, opts)
	})
}

// Purge removes all expired entries from the cache.
func (c *CachedGeocoder) Purge(context.Context) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.cache {
		if !now.Before(entry.Expiry) {
			delete(c.cache, key)
		}
	}
}

// Len returns the number of cached entries, including expired ones not purged yet.
func (c *CachedGeocoder) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *CachedGeocoder) lookup(key cacheKey, fetch func() (Response, error)) (Response, error) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	if ok && time.Now().Before(entry.Expiry) {
		resp := entry.Response
		c.mu.RUnlock()
		resp.CacheHit = true
		return resp, nil
	}
	c.mu.RUnlock()

	resp, err := fetch()
	if err != nil {
		return resp, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttlHit
	if !resp.OK() {
		ttl = c.ttlMiss
	}
	c.cache[key] = cacheEntry{
		Response: resp,
		Expiry:   time.Now().Add(ttl),
	}

	return resp, nil
}

func geocodeKey(provider, address string, opts Options) cacheKey {
	return cacheKey{
		Provider: provider,
		Address:  normalizeAddress(address),
		Options:  opts.String(),
	}
}

func reverseKey(provider string, coords Coordinate, opts Options) cacheKey {
	return cacheKey{
		Provider: provider,
		Reverse:  true,
		LatQ:     quantizeCoord(coords.Lat),
		LonQ:     quantizeCoord(coords.Lon),
		Options:  opts.String(),
	}
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func quantizeCoord(val float64) int32 {
	return int32(math.Round(val / coordPrecision))
}
