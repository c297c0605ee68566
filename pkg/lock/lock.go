package lock

import (
	"context"
	"fmt"
	"time"
)

// Locker 命名互斥锁，用于串行化对同一目标的并发写操作。
// Acquire 在 WaitTimeout 内轮询抢锁，超时返回 ErrAcquireTimeout；
// 成功时返回释放函数，调用方必须在所有退出路径上调用（defer release()）。
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ErrAcquireTimeout 在等待超时内未能获得锁
var ErrAcquireTimeout = fmt.Errorf("acquire lock timeout")

// Options 锁参数
type Options struct {
	WaitTimeout time.Duration // 抢锁的最长等待时间
	TTL         time.Duration // 锁的持有超时，防止持有者崩溃后死锁
	RetryDelay  time.Duration // 抢锁失败后的重试间隔
}

// DefaultOptions 默认锁参数
func DefaultOptions() Options {
	return Options{
		WaitTimeout: 3 * time.Second,
		TTL:         10 * time.Second,
		RetryDelay:  50 * time.Millisecond,
	}
}

// ========== 锁键派生 ==========
//
// 同一目标的所有写操作（update/delete）从目标id派生同一个键，
// 保证不同操作类型之间也互斥；create以父级范围为键。

// ResourceKey 资源写操作的锁键
func ResourceKey(resourceID uint) string {
	return fmt.Sprintf("permission:resource:%d", resourceID)
}

// ResourceCreateKey 资源创建的锁键（按所属应用）
func ResourceCreateKey(appID uint) string {
	return fmt.Sprintf("permission:resource:app:%d", appID)
}

// PolicyKey 策略写操作的锁键
func PolicyKey(policyID uint) string {
	return fmt.Sprintf("permission:policy:%d", policyID)
}

// PolicyCreateKey 策略创建的锁键（按所属资源）
func PolicyCreateKey(resourceID uint) string {
	return fmt.Sprintf("permission:policy:res:%d", resourceID)
}
