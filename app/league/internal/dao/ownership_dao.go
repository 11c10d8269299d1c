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

var ownershipColumns = []string{
	"character_list_id", "user_id", "character_id", "quantity", "is_formation", "level", "ceiling",
}

// OwnershipDAO 角色持有记录
type OwnershipDAO struct {
	logger  logger.Logger
	metrics *metrics.LeagueMetrics
}

// NewOwnershipDAO 创建持有记录 DAO
func NewOwnershipDAO(l logger.Logger, m *metrics.LeagueMetrics) *OwnershipDAO {
	return &OwnershipDAO{
		logger:  l.Named("dao.ownership"),
		metrics: m,
	}
}

// ListByUser 列出账号的全部持有记录，formationOnly 为 true 时只返回出场角色
func (d *OwnershipDAO) ListByUser(ctx context.Context, q postgres.Querier, userID int64, formationOnly bool) (_ []*model.Ownership, err error) {
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	where := squirrel.Eq{"user_id": userID}
	if formationOnly {
		where["is_formation"] = true
	}

	query, args, err := postgres.QueryBuilder.
		Select(ownershipColumns...).
		From(tableCharacterList).
		Where(where).
		OrderBy("character_list_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryAll[model.Ownership](ctx, q, query, args...)
}

// Get 查询 (user_id, character_id) 对应的记录，forUpdate 为 true 时加行锁
func (d *OwnershipDAO) Get(ctx context.Context, q postgres.Querier, userID, characterID int64, forUpdate bool) (_ *model.Ownership, err error) {
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	b := postgres.QueryBuilder.
		Select(ownershipColumns...).
		From(tableCharacterList).
		Where(squirrel.Eq{"user_id": userID, "character_id": characterID})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryOne[model.Ownership](ctx, q, query, args...)
}

// Create 新增记录并回填 character_list_id
func (d *OwnershipDAO) Create(ctx context.Context, q postgres.Querier, o *model.Ownership) (err error) {
	defer func(start time.Time) { observe(d.metrics, "insert", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Insert(tableCharacterList).
		Columns("user_id", "character_id", "quantity", "is_formation", "level", "ceiling").
		Values(o.UserID, o.CharacterID, o.Quantity, o.IsFormation, o.Level, o.Ceiling).
		Suffix("RETURNING character_list_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&o.CharacterListID); err != nil {
		d.logger.Error("failed to create ownership",
			"user_id", o.UserID,
			"character_id", o.CharacterID,
			"error", err,
		)
		return fmt.Errorf("failed to create ownership: %w", err)
	}
	return nil
}

// Update 按主键覆盖数量、等级、保底计数与出场标记
func (d *OwnershipDAO) Update(ctx context.Context, q postgres.Querier, o *model.Ownership) (err error) {
	defer func(start time.Time) { observe(d.metrics, "update", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Update(tableCharacterList).
		SetMap(map[string]any{
			"quantity":     o.Quantity,
			"is_formation": o.IsFormation,
			"level":        o.Level,
			"ceiling":      o.Ceiling,
		}).
		Where(squirrel.Eq{"character_list_id": o.CharacterListID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	affected, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update ownership: %w", err)
	}
	if affected == 0 {
		return postgres.ErrNoRows
	}
	return nil
}

// Delete 删除记录
func (d *OwnershipDAO) Delete(ctx context.Context, q postgres.Querier, characterListID int64) (err error) {
	defer func(start time.Time) { observe(d.metrics, "delete", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Delete(tableCharacterList).
		Where(squirrel.Eq{"character_list_id": characterListID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete ownership: %w", err)
	}
	return nil
}

// ClearFormation 取消账号全部出场标记
func (d *OwnershipDAO) ClearFormation(ctx context.Context, q postgres.Querier, userID int64) (err error) {
	defer func(start time.Time) { observe(d.metrics, "update", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Update(tableCharacterList).
		Set("is_formation", false).
		Where(squirrel.Eq{"user_id": userID, "is_formation": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear formation: %w", err)
	}
	return nil
}
