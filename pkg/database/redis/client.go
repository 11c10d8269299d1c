package redis

import (
	"context"
	"fmt"

	"github.com/lk2023060901/kickoff/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

// Client Redis 客户端，对外隐藏 go-redis 类型
type Client struct {
	rdb *goredis.Client
	cfg *Config
}

// NewClient 创建客户端，cfg 可以只包含部分字段
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:            merged.Addr(),
		Password:        merged.Password,
		DB:              merged.DB,
		MaxIdleConns:    merged.Pool.MaxIdleConns,
		MaxActiveConns:  merged.Pool.MaxOpenConns,
		ConnMaxLifetime: merged.Pool.ConnMaxLifetime,
		ConnMaxIdleTime: merged.Pool.ConnMaxIdleTime,
		DialTimeout:     merged.Pool.DialTimeout,
		ReadTimeout:     merged.Pool.ReadTimeout,
		WriteTimeout:    merged.Pool.WriteTimeout,
		PoolTimeout:     merged.Pool.PoolTimeout,
	})
	return &Client{rdb: rdb, cfg: merged}, nil
}

// Ping 检查连接
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// PoolStats 连接池统计
func (c *Client) PoolStats() PoolStats {
	s := c.rdb.PoolStats()
	return PoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
	}
}

// Close 关闭客户端
func (c *Client) Close() error {
	return c.rdb.Close()
}
