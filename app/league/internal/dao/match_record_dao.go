package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/pkg/database/postgres"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

var matchRecordColumns = []string{
	"match_id", "mode", "home_user_id", "away_user_id", "winner",
	"home_goals", "away_goals", "home_rating_delta", "away_rating_delta", "created_at",
}

// MatchRecordDAO 对局历史
type MatchRecordDAO struct {
	logger  logger.Logger
	metrics *metrics.LeagueMetrics
}

// NewMatchRecordDAO 创建对局历史 DAO
func NewMatchRecordDAO(l logger.Logger, m *metrics.LeagueMetrics) *MatchRecordDAO {
	return &MatchRecordDAO{
		logger:  l.Named("dao.match_record"),
		metrics: m,
	}
}

// Insert 写入一条对局记录，match_id 由调用方生成
func (d *MatchRecordDAO) Insert(ctx context.Context, q postgres.Querier, r *model.MatchRecord) (err error) {
	defer func(start time.Time) { observe(d.metrics, "insert", start, err) }(time.Now())

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	query, args, err := postgres.QueryBuilder.
		Insert(tableMatchRecords).
		Columns(matchRecordColumns...).
		Values(r.MatchID, r.Mode, r.HomeUserID, r.AwayUserID, r.Winner,
			r.HomeGoals, r.AwayGoals, r.HomeRatingDelta, r.AwayRatingDelta, r.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		d.logger.Error("failed to insert match record", "match_id", r.MatchID, "error", err)
		return fmt.Errorf("failed to insert match record: %w", err)
	}
	return nil
}

// ListByUser 按时间倒序列出账号参与的对局
func (d *MatchRecordDAO) ListByUser(ctx context.Context, q postgres.Querier, userID int64, limit int) (_ []*model.MatchRecord, err error) {
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	b := postgres.QueryBuilder.
		Select(matchRecordColumns...).
		From(tableMatchRecords).
		Where(squirrel.Or{
			squirrel.Eq{"home_user_id": userID},
			squirrel.Eq{"away_user_id": userID},
		}).
		OrderBy("created_at DESC", "match_id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryAll[model.MatchRecord](ctx, q, query, args...)
}
