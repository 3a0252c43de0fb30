// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache of rendered landing pages and
// their generated stylesheets. A hit skips the product, theme and list
// queries and the template execution entirely.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// cssSuffix distinguishes a product's cached stylesheet from its page.
	cssSuffix = ":css"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves cached bytes for a key. Cache errors are logged and
// reported as a miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered bytes for a key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, body []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, body, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidateProduct drops everything cached for the given product slugs
// (the landing page and stylesheet) plus the product index. Callers pass
// both the old and the new slug when a slug changes.
func (pc *PageCache) InvalidateProduct(ctx context.Context, slugs ...string) {
	keys := []string{pageKeyPrefix + IndexKey()}
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		keys = append(keys, pageKeyPrefix+SlugKey(slug), pageKeyPrefix+CSSKey(slug))
	}
	if err := pc.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("page cache invalidate error", "slugs", slugs, "error", err)
		return
	}
	slog.Debug("page cache invalidated", "slugs", slugs)
}

// InvalidateAll removes all cached pages by scanning for the prefix.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}

// IndexKey returns the cache key for the product index page.
func IndexKey() string {
	return "_index"
}

// SlugKey returns the cache key for a product landing page.
func SlugKey(slug string) string {
	return slug
}

// CSSKey returns the cache key for a product's generated stylesheet.
func CSSKey(slug string) string {
	return slug + cssSuffix
}
