package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Local keeps statistics in process. Used when no memcached is configured.
type Local struct {
	cache *cache.Cache
}

func NewLocal() *Local {
	return &Local{
		cache: cache.New(10*time.Minute, 15*time.Minute),
	}
}

func (c *Local) Get(key string) ([]byte, bool) {
	cached, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	value, ok := cached.([]byte)
	return value, ok
}

func (c *Local) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		c.cache.Set(key, value, cache.NoExpiration)
		return
	}
	c.cache.Set(key, value, ttl)
}
