package config

import (
	"context"
	"errors"
	"log"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

func GetRedisDB() *redis.Client {
	return rdb
}

func GetRedisLock() *redislock.Client {
	return locker
}

// ConnectRedis sets the global Redis client + lock client. Redis only guards against two
// audits of the same date running at once, so a failed ping is returned to the caller
// which may decide to continue without the lock.
func ConnectRedis(ctx context.Context, s *Settings) error {
	if s == nil || s.RedisAddress == "" {
		return errors.New("REDIS_ADDRESS not set")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     s.RedisAddress,
		Password: "",
		DB:       0,
		PoolSize: 10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}
	rdb = client
	locker = redislock.New(rdb)
	log.Printf("connected to redis (addr=%s)", s.RedisAddress)
	return nil
}

func CloseRedis() error {
	if rdb == nil {
		return nil
	}
	err := rdb.Close()
	rdb = nil
	locker = nil
	return err
}
