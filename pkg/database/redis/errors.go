package redis

import "errors"

var (
	// ErrNilConfig 配置为空
	ErrNilConfig = errors.New("redis config is nil")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("invalid redis config")

	// ErrLockFailed 获取锁失败
	ErrLockFailed = errors.New("redis: failed to acquire lock")

	// ErrLockNotHeld 解锁时锁已过期或被其他持有者占用
	ErrLockNotHeld = errors.New("redis: lock not held")
)
