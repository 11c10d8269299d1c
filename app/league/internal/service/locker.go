package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/kickoff/pkg/database/redis"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// Locker 按账号串行化抽卡、强化、出售等写操作
type Locker interface {
	WithAccountLock(ctx context.Context, userID int64, fn func() error) error
}

// LockConfig 分布式锁配置
type LockConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// DefaultLockConfig 默认锁配置
func DefaultLockConfig() *LockConfig {
	return &LockConfig{
		Enabled:       true,
		KeyPrefix:     "league:lock:account:",
		TTL:           5 * time.Second,
		RetryInterval: 50 * time.Millisecond,
		MaxRetries:    40,
	}
}

// RedisLocker 基于 Redis SET NX 的账号锁
type RedisLocker struct {
	client *redis.Client
	cfg    *LockConfig
	logger logger.Logger
}

// NewLocker 按配置创建锁，未启用时返回 NoopLocker
func NewLocker(cfg *LockConfig, client *redis.Client, l logger.Logger) Locker {
	if cfg == nil || !cfg.Enabled || client == nil {
		return NoopLocker{}
	}
	return &RedisLocker{client: client, cfg: cfg, logger: l.Named("service.locker")}
}

func (r *RedisLocker) WithAccountLock(ctx context.Context, userID int64, fn func() error) error {
	key := fmt.Sprintf("%s%d", r.cfg.KeyPrefix, userID)
	err := r.client.WithLockRetry(ctx, key, r.cfg.TTL, r.cfg.RetryInterval, r.cfg.MaxRetries, fn)
	if errors.Is(err, redis.ErrLockFailed) {
		r.logger.WarnContext(ctx, "account lock busy", "user_id", userID)
	}
	return err
}

// NoopLocker 单实例部署时依赖数据库行锁即可
type NoopLocker struct{}

func (NoopLocker) WithAccountLock(_ context.Context, _ int64, fn func() error) error {
	return fn()
}
