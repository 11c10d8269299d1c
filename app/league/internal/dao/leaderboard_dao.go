package dao

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/pkg/database/redis"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// DefaultLeaderboardKey 排行榜 sorted set 的默认 key
const DefaultLeaderboardKey = "league:ranking"

// LeaderboardDAO 以 Redis sorted set 保存积分排名，member 为 user_id
type LeaderboardDAO struct {
	redis   *redis.Client
	key     string
	logger  logger.Logger
	metrics *metrics.LeagueMetrics
}

// NewLeaderboardDAO 创建排行榜 DAO，key 为空时使用 DefaultLeaderboardKey
func NewLeaderboardDAO(rdb *redis.Client, key string, l logger.Logger, m *metrics.LeagueMetrics) *LeaderboardDAO {
	if key == "" {
		key = DefaultLeaderboardKey
	}
	return &LeaderboardDAO{
		redis:   rdb,
		key:     key,
		logger:  l.Named("dao.leaderboard"),
		metrics: m,
	}
}

func toItems(accounts []*model.Account) []redis.ZItem {
	items := make([]redis.ZItem, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, redis.ZItem{
			Member: strconv.FormatInt(a.UserID, 10),
			Score:  float64(a.RankPoint),
		})
	}
	return items
}

// Upsert 更新若干账号的积分
func (d *LeaderboardDAO) Upsert(ctx context.Context, accounts ...*model.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	if _, err := d.redis.ZAdd(ctx, d.key, toItems(accounts)...); err != nil {
		return fmt.Errorf("failed to upsert leaderboard: %w", err)
	}
	return nil
}

// Replace 用完整账号列表重建排行榜
func (d *LeaderboardDAO) Replace(ctx context.Context, accounts []*model.Account) error {
	if err := d.redis.ZReplace(ctx, d.key, toItems(accounts)); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}
	return nil
}

// Top 积分最高的 limit 个 user_id，排行榜为空时返回 nil
func (d *LeaderboardDAO) Top(ctx context.Context, limit int) ([]int64, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	items, err := d.redis.ZRevRangeWithScores(ctx, d.key, 0, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if len(items) == 0 {
		d.metrics.RecordCacheMiss("leaderboard")
		return nil, nil
	}
	d.metrics.RecordCacheHit("leaderboard")

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		id, err := strconv.ParseInt(it.Member, 10, 64)
		if err != nil {
			d.logger.Warn("skip malformed leaderboard member", "member", it.Member)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Size 成员数量
func (d *LeaderboardDAO) Size(ctx context.Context) (int64, error) {
	return d.redis.ZCard(ctx, d.key)
}
