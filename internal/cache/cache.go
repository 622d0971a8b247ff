// Package cache caches video metadata lookups so repeated saves of the same
// video don't hit the Data API quota.
//
// Two backends: Redis when REDIS_ADDR is configured (shared across server
// instances), an in-process map otherwise. Both are best-effort — a cache
// failure degrades to a provider call, never to a request failure.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arefin/memotube/internal/youtube"
)

// MetadataCache stores provider results keyed by video ID.
type MetadataCache interface {
	Get(ctx context.Context, videoID string) (*youtube.Metadata, bool)
	Set(ctx context.Context, videoID string, meta *youtube.Metadata)
}

const keyPrefix = "memotube:video-meta:"

// Redis is the shared backend. Entries are JSON with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and verifies the connection with a ping.
func NewRedis(ctx context.Context, addr, password string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (c *Redis) Get(ctx context.Context, videoID string) (*youtube.Metadata, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+videoID).Bytes()
	if err != nil {
		// redis.Nil (miss) and transport errors are the same to callers.
		return nil, false
	}
	var meta youtube.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, false
	}
	return &meta, true
}

func (c *Redis) Set(ctx context.Context, videoID string, meta *youtube.Metadata) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}
	// Best effort; the result of SET is irrelevant to the request.
	c.client.Set(ctx, keyPrefix+videoID, raw, c.ttl)
}

// Close releases the underlying Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Memory is the single-process fallback backend.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	meta      youtube.Metadata
	expiresAt time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (c *Memory) Get(_ context.Context, videoID string) (*youtube.Metadata, bool) {
	c.mu.RLock()
	entry, ok := c.entries[videoID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		// Evict on expired hit so the map doesn't grow forever.
		c.mu.Lock()
		if cur, ok := c.entries[videoID]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, videoID)
		}
		c.mu.Unlock()
		return nil, false
	}
	meta := entry.meta
	return &meta, true
}

func (c *Memory) Set(_ context.Context, videoID string, meta *youtube.Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[videoID] = memoryEntry{
		meta:      *meta,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// CachedProvider wraps a youtube.Provider with a MetadataCache.
type CachedProvider struct {
	provider youtube.Provider
	cache    MetadataCache
}

func NewCachedProvider(provider youtube.Provider, cache MetadataCache) *CachedProvider {
	return &CachedProvider{provider: provider, cache: cache}
}

func (p *CachedProvider) Lookup(ctx context.Context, videoID string) (*youtube.Metadata, error) {
	if meta, ok := p.cache.Get(ctx, videoID); ok {
		return meta, nil
	}

	meta, err := p.provider.Lookup(ctx, videoID)
	if err != nil {
		return nil, err
	}

	p.cache.Set(ctx, videoID, meta)
	return meta, nil
}
