package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T, opts Options) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisLocker(client, "test", opts), mr
}

func TestAcquireRelease(t *testing.T) {
	locker, _ := newTestLocker(t, DefaultOptions())
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "policy:1")
	require.NoError(t, err)
	release()

	// 释放后可以重新获取
	release, err = locker.Acquire(ctx, "policy:1")
	require.NoError(t, err)
	release()
}

func TestAcquireTimeout(t *testing.T) {
	locker, _ := newTestLocker(t, Options{
		WaitTimeout: 100 * time.Millisecond,
		TTL:         5 * time.Second,
		RetryDelay:  10 * time.Millisecond,
	})
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "policy:1")
	require.NoError(t, err)
	defer release()

	// 锁被持有时第二次获取应在等待超时后失败
	_, err = locker.Acquire(ctx, "policy:1")
	assert.ErrorIs(t, err, ErrAcquireTimeout)
}

func TestAcquireDifferentKeys(t *testing.T) {
	locker, _ := newTestLocker(t, DefaultOptions())
	ctx := context.Background()

	// 不同目标互不竞争
	release1, err := locker.Acquire(ctx, "policy:1")
	require.NoError(t, err)
	defer release1()

	release2, err := locker.Acquire(ctx, "policy:2")
	require.NoError(t, err)
	defer release2()
}

func TestReleaseOnlyOwnToken(t *testing.T) {
	locker, mr := newTestLocker(t, Options{
		WaitTimeout: time.Second,
		TTL:         50 * time.Millisecond,
		RetryDelay:  5 * time.Millisecond,
	})
	ctx := context.Background()

	// 第一个持有者的锁因TTL过期
	staleRelease, err := locker.Acquire(ctx, "policy:1")
	require.NoError(t, err)
	mr.FastForward(100 * time.Millisecond)

	// 后继者获得锁
	release, err := locker.Acquire(ctx, "policy:1")
	require.NoError(t, err)
	defer release()

	// 过期持有者的释放不应删掉后继者的锁
	staleRelease()
	_, err = locker.Acquire(ctx, "policy:1")
	assert.ErrorIs(t, err, ErrAcquireTimeout)
}

func TestAcquireContextCanceled(t *testing.T) {
	locker, _ := newTestLocker(t, Options{
		WaitTimeout: 5 * time.Second,
		TTL:         5 * time.Second,
		RetryDelay:  10 * time.Millisecond,
	})

	release, err := locker.Acquire(context.Background(), "policy:1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "policy:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMutualExclusion(t *testing.T) {
	locker, _ := newTestLocker(t, Options{
		WaitTimeout: 5 * time.Second,
		TTL:         5 * time.Second,
		RetryDelay:  time.Millisecond,
	})
	ctx := context.Background()

	// 临界区计数器：持锁期间不允许有第二个进入者
	var inCritical int
	var maxInCritical int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := locker.Acquire(ctx, "policy:1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical)
}

func TestKeyDerivation(t *testing.T) {
	// update/delete共用同一键，不同实体类型和不同id互不竞争
	assert.Equal(t, ResourceKey(3), ResourceKey(3))
	assert.NotEqual(t, ResourceKey(3), ResourceKey(4))
	assert.NotEqual(t, ResourceKey(3), PolicyKey(3))
	assert.NotEqual(t, PolicyKey(3), PolicyCreateKey(3))
}
