package cache

import (
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Memcached is a StatsCache shared by every daybook instance pointed at the same memcached.
// Failures degrade to misses.
type Memcached struct {
	client *memcache.Client
}

func NewMemcached(client *memcache.Client) *Memcached {
	return &Memcached{client: client}
}

func (c *Memcached) Get(key string) ([]byte, bool) {
	item, err := c.client.Get(key)
	if err != nil {
		if err != memcache.ErrCacheMiss {
			slog.Warn("memcached get failed", slog.String("key", key), slog.String("error", err.Error()), slog.String("module", "cache"))
		}
		return nil, false
	}
	return item.Value, true
}

func (c *Memcached) Set(key string, value []byte, ttl time.Duration) {
	err := c.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: expiration(ttl),
	})
	if err != nil {
		slog.Warn("memcached set failed", slog.String("key", key), slog.String("error", err.Error()), slog.String("module", "cache"))
	}
}

// expiration converts ttl to memcached seconds. Zero keeps the item until eviction.
func expiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	seconds := int32(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
