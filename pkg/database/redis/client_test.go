package redis

import (
	"context"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigValidate 测试配置验证
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{"nil", nil, ErrNilConfig},
		{"default", DefaultConfig(), nil},
		{"empty host", &Config{Port: 6379}, ErrInvalidConfig},
		{"bad port", &Config{Host: "h", Port: 0}, ErrInvalidConfig},
		{"bad db", &Config{Host: "h", Port: 6379, DB: 16}, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
	assert.Equal(t, "localhost:6379", DefaultConfig().Addr())
}

func integrationClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	host := os.Getenv("KICKOFF_TEST_REDIS_HOST")
	if host == "" {
		t.Skip("KICKOFF_TEST_REDIS_HOST not set")
	}
	port := 6379
	if p, err := strconv.Atoi(os.Getenv("KICKOFF_TEST_REDIS_PORT")); err == nil {
		port = p
	}
	c, err := NewClient(&Config{Host: host, Port: port, DB: 15})
	require.NoError(t, err)
	require.NoError(t, c.Ping(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// TestSortedSet_Integration 排行榜相关命令
func TestSortedSet_Integration(t *testing.T) {
	c := integrationClient(t)
	ctx := context.Background()
	key := "kickoff:test:zset"

	require.NoError(t, c.ZReplace(ctx, key, []ZItem{{Member: "1", Score: 100}, {Member: "2", Score: 300}, {Member: "3", Score: 200}}))
	defer func() { _ = c.ZReplace(ctx, key, nil) }()

	items, err := c.ZRevRangeWithScores(ctx, key, 0, -1)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "2", items[0].Member)

	n, err := c.ZCard(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, c.ZReplace(ctx, key, nil))
	n, err = c.ZCard(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// TestWithLockRetry_Integration 持锁期间第二个持有者无法获取
func TestWithLockRetry_Integration(t *testing.T) {
	c := integrationClient(t)
	ctx := context.Background()
	key := "kickoff:test:lock"

	var inside atomic.Int32
	err := c.WithLockRetry(ctx, key, time.Second, 10*time.Millisecond, 3, func() error {
		inside.Add(1)
		ok, err := NewLock(c, key, time.Second).TryLock(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), inside.Load())

	lock := NewLock(c, key, time.Second)
	ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, lock.Unlock(ctx))
}
