package dao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/pkg/database/postgres"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

var characterColumns = []string{
	"character_id", "name", "speed", "goal_determination", "shoot_power", "defense", "stamina",
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// CharacterDAO 角色图鉴，只读
type CharacterDAO struct {
	logger  logger.Logger
	metrics *metrics.LeagueMetrics
}

// NewCharacterDAO 创建图鉴 DAO
func NewCharacterDAO(l logger.Logger, m *metrics.LeagueMetrics) *CharacterDAO {
	return &CharacterDAO{
		logger:  l.Named("dao.character"),
		metrics: m,
	}
}

// GetByName 按名称查询
func (d *CharacterDAO) GetByName(ctx context.Context, q postgres.Querier, name string) (_ *model.Character, err error) {
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Select(characterColumns...).
		From(tableCharacters).
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryOne[model.Character](ctx, q, query, args...)
}

// ListByIDs 批量查询
func (d *CharacterDAO) ListByIDs(ctx context.Context, q postgres.Querier, ids []int64) (_ []*model.Character, err error) {
	if len(ids) == 0 {
		return nil, nil
	}
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Select(characterColumns...).
		From(tableCharacters).
		Where(squirrel.Eq{"character_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryAll[model.Character](ctx, q, query, args...)
}

// ListAll 全部图鉴，按 character_id 排序保证抽卡采样稳定
func (d *CharacterDAO) ListAll(ctx context.Context, q postgres.Querier) (_ []*model.Character, err error) {
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Select(characterColumns...).
		From(tableCharacters).
		OrderBy("character_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryAll[model.Character](ctx, q, query, args...)
}
