package database

import (
	"fmt"
	"sync"
	"time"

	"iamconsole/pkg/config"
	"iamconsole/pkg/lock"

	"github.com/go-redis/redis/v8"
)

var (
	redisClient     *redis.Client
	redisClientOnce sync.Once

	lockerInstance *lock.RedisLocker
	lockerOnce     sync.Once
)

// GetRedisClient 获取Redis客户端的单例实例
func GetRedisClient() *redis.Client {
	redisClientOnce.Do(func() {
		cfg := config.GetConfig()
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	})
	return redisClient
}

// GetLocker 获取互斥锁的单例实例
func GetLocker() lock.Locker {
	lockerOnce.Do(func() {
		cfg := config.GetConfig()
		opts := lock.DefaultOptions()
		if d, err := time.ParseDuration(cfg.Lock.WaitTimeout); err == nil {
			opts.WaitTimeout = d
		}
		if d, err := time.ParseDuration(cfg.Lock.TTL); err == nil {
			opts.TTL = d
		}
		lockerInstance = lock.NewRedisLocker(GetRedisClient(), cfg.Redis.Prefix, opts)
	})
	return lockerInstance
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
