package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores provider responses for a short time.
type Cache interface {
	Get(ctx context.Context, key string) ([]Venue, bool, error)
	Set(ctx context.Context, key string, venues []Venue, ttl time.Duration) error
}

// CacheKey rounds coordinates to four decimals (about 11m) so that small
// movements of the device hit the same entry.
func CacheKey(q Query) string {
	return fmt.Sprintf("places:%s:%d:%.4f:%.4f", q.Tag, q.Radius, q.Latitude, q.Longitude)
}

// CachedProvider serves repeated queries from a Cache. Errors are never cached.
type CachedProvider struct {
	next  Provider
	cache Cache
	ttl   time.Duration
}

func NewCachedProvider(next Provider, cache Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl}
}

// Nearby implements Provider.
func (p *CachedProvider) Nearby(ctx context.Context, q Query) ([]Venue, error) {
	key := CacheKey(q)
	venues, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		log.Printf("[warn] places cache get %s: %v", key, err)
	} else if ok {
		return venues, nil
	}

	venues, err = p.next.Nearby(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := p.cache.Set(ctx, key, venues, p.ttl); err != nil {
		log.Printf("[warn] places cache set %s: %v", key, err)
	}
	return venues, nil
}

type memoryEntry struct {
	venues    []Venue
	expiresAt time.Time
}

// MemoryCache is an in-process Cache. Expired entries are hidden from Get and
// removed by Prune.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]Venue, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	out := make([]Venue, len(entry.venues))
	copy(out, entry.venues)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, venues []Venue, ttl time.Duration) error {
	stored := make([]Venue, len(venues))
	copy(stored, venues)
	c.mu.Lock()
	c.entries[key] = memoryEntry{venues: stored, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Prune drops expired entries and reports how many were removed.
func (c *MemoryCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache stores JSON-encoded responses in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Venue, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var venues []Venue
	if err := json.Unmarshal(data, &venues); err != nil {
		return nil, false, fmt.Errorf("decode cached venues: %w", err)
	}
	return venues, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, venues []Venue, ttl time.Duration) error {
	if venues == nil {
		venues = []Venue{}
	}
	data, err := json.Marshal(venues)
	if err != nil {
		return fmt.Errorf("encode venues: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
