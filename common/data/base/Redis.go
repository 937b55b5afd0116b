package base

import (
	"time"

	"github.com/go-redis/redis"
)

// memcache caps relative expirations at 30 days
const cacheExpiration = time.Hour * 24 * 30

type Redis struct {
	client     *redis.Client
	expiration time.Duration
}

func (r *Redis) Get(key string) (string, error) {
	v, err := r.client.Get(key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	return v, err
}

func (r *Redis) Set(key, value string) error {
	return r.client.Set(key, value, r.expiration).Err()
}

func (r *Redis) Delete(key string) error {
	return r.client.Del(key).Err()
}

func NewRedis(address, password string) (*Redis, error) {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       0,
	}), expiration: cacheExpiration}, nil
}
