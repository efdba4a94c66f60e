package utils

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/nagatech/daily_audit/config"
	"github.com/redis/go-redis/v9"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

func redisKey[T any](id string) string {
	return GetTypeName[T]() + ":" + id
}

// StoreRedis caches obj under TypeName:id. It is a no-op when Redis is not configured.
func StoreRedis[T any](ctx context.Context, id string, obj T) error {
	rdb := config.GetRedisDB()
	if rdb == nil {
		return nil
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, redisKey[T](id), data, GetCacheLifespan()).Err()
}

// RetrieveRedis returns nil when the key does not exist or Redis is not configured.
func RetrieveRedis[T any](ctx context.Context, id string) (*T, error) {
	rdb := config.GetRedisDB()
	if rdb == nil {
		return nil, nil
	}
	data, err := rdb.Get(ctx, redisKey[T](id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func RemoveRedis[T any](ctx context.Context, id string) error {
	rdb := config.GetRedisDB()
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, redisKey[T](id)).Err()
}
