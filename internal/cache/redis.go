// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/codec"
)

const redisPrefix = "schoolhub:cache:"

// RedisClient is the subset of *goredis.Client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

var _ RedisClient = (*goredis.Client)(nil)

// Redis is a Cache shared by every API process. Expiry is left to Redis.
type Redis struct {
	client RedisClient
}

// NewRedis creates a Redis cache.
func NewRedis(client RedisClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, oops.Code("CACHE_GET_FAILED").With("key", key).Wrap(err)
	}
	if err := codec.Unmarshal(data, dst); err != nil {
		return false, oops.Code("CACHE_DECODE_FAILED").With("key", key).Wrap(err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return oops.Code("CACHE_ENCODE_FAILED").With("key", key).Wrap(err)
	}
	if err := r.client.Set(ctx, redisPrefix+key, data, ttl).Err(); err != nil {
		return oops.Code("CACHE_SET_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisPrefix+key).Err(); err != nil {
		return oops.Code("CACHE_DELETE_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

var _ Cache = (*Redis)(nil)
