package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// ZAdd 添加或更新成员分数
func (c *Client) ZAdd(ctx context.Context, key string, members ...ZItem) (int64, error) {
	n, err := c.rdb.ZAdd(ctx, key, toZ(members)...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zadd failed: %w", err)
	}
	return n, nil
}

// ZRevRangeWithScores 按分数从高到低返回 [start, stop] 区间
func (c *Client) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ZItem, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange failed: %w", err)
	}
	items := make([]ZItem, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		items = append(items, ZItem{Member: member, Score: z.Score})
	}
	return items, nil
}

// ZCard 成员数量
func (c *Client) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zcard failed: %w", err)
	}
	return n, nil
}

// ZReplace 在 MULTI/EXEC 中删除 key 并写入全部成员
func (c *Client) ZReplace(ctx context.Context, key string, members []ZItem) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, key, toZ(members)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis zreplace failed: %w", err)
	}
	return nil
}

func toZ(members []ZItem) []goredis.Z {
	zs := make([]goredis.Z, len(members))
	for i, m := range members {
		zs[i] = goredis.Z{Score: m.Score, Member: m.Member}
	}
	return zs
}
