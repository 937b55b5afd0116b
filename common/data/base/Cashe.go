package base

import "errors"

// ErrCacheMiss is returned by Get when the key is not cached.
var ErrCacheMiss = errors.New("cache miss")

type Cashe interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// NewCache picks the memcache backend when servers are given, else redis when an address is
// given, else an in-process cache.
func NewCache(memcacheServers []string, redisAddress, redisPassword string) (Cashe, error) {
	if len(memcacheServers) > 0 {
		return NewMemcache(memcacheServers)
	}
	if redisAddress != "" {
		return NewRedis(redisAddress, redisPassword)
	}
	return NewMemory(), nil
}
