package lock

import (
	"context"
	"time"

	"iamconsole/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript 仅当锁值仍是自己的token时才删除，
// 避免TTL过期后误删后继持有者的锁
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// RedisLocker 基于Redis SetNX的命名互斥锁
type RedisLocker struct {
	client *redis.Client
	prefix string
	opts   Options
}

// NewRedisLocker 创建Redis锁
func NewRedisLocker(client *redis.Client, prefix string, opts Options) *RedisLocker {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultOptions().WaitTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultOptions().TTL
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultOptions().RetryDelay
	}
	return &RedisLocker{
		client: client,
		prefix: prefix,
		opts:   opts,
	}
}

// Acquire 在WaitTimeout内轮询SetNX抢锁
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + ":lock:" + key
	token := uuid.NewString()

	deadline := time.Now().Add(l.opts.WaitTimeout)
	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.opts.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(fullKey, token) }, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrAcquireTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.opts.RetryDelay):
		}
	}
}

// release 释放锁。释放失败只记日志，锁会随TTL过期
func (l *RedisLocker) release(fullKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := l.client.Eval(ctx, releaseScript, []string{fullKey}, token).Err(); err != nil {
		logger.GetLogger().Errorf("Failed to release lock %s: %v", fullKey, err)
	}
}
