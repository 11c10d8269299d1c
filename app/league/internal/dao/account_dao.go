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

var accountColumns = []string{
	"user_id", "login_id", "user_name", "password_hash",
	"rank_point", "win_count", "draw_count", "lose_count",
	"user_cash", "tier", "created_at", "updated_at",
}

// AccountDAO 账号数据访问对象
type AccountDAO struct {
	logger  logger.Logger
	metrics *metrics.LeagueMetrics
}

// NewAccountDAO 创建账号 DAO
func NewAccountDAO(l logger.Logger, m *metrics.LeagueMetrics) *AccountDAO {
	return &AccountDAO{
		logger:  l.Named("dao.account"),
		metrics: m,
	}
}

// GetByID 根据 user_id 查询，forUpdate 为 true 时加行锁
func (d *AccountDAO) GetByID(ctx context.Context, q postgres.Querier, userID int64, forUpdate bool) (_ *model.Account, err error) {
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	b := postgres.QueryBuilder.
		Select(accountColumns...).
		From(tableAccounts).
		Where(squirrel.Eq{"user_id": userID})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryOne[model.Account](ctx, q, query, args...)
}

// GetByLoginID 根据登录 ID 查询
func (d *AccountDAO) GetByLoginID(ctx context.Context, q postgres.Querier, loginID string) (_ *model.Account, err error) {
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Select(accountColumns...).
		From(tableAccounts).
		Where(squirrel.Eq{"login_id": loginID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryOne[model.Account](ctx, q, query, args...)
}

// ExistsByLoginOrName 登录 ID 或昵称是否已被占用
func (d *AccountDAO) ExistsByLoginOrName(ctx context.Context, q postgres.Querier, loginID, userName string) (_ bool, err error) {
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Select("1").
		From(tableAccounts).
		Where(squirrel.Or{
			squirrel.Eq{"login_id": loginID},
			squirrel.Eq{"user_name": userName},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var one int
	if err := q.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if postgres.IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return true, nil
}

// Create 创建账号并回填 user_id 与时间戳
func (d *AccountDAO) Create(ctx context.Context, q postgres.Querier, a *model.Account) (err error) {
	defer func(start time.Time) { observe(d.metrics, "insert", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Insert(tableAccounts).
		Columns("login_id", "user_name", "password_hash", "rank_point", "win_count",
			"draw_count", "lose_count", "user_cash", "tier").
		Values(a.LoginID, a.UserName, a.PasswordHash, a.RankPoint, a.WinCount,
			a.DrawCount, a.LoseCount, a.UserCash, a.Tier).
		Suffix("RETURNING user_id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&a.UserID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		d.logger.Error("failed to create account", "login_id", a.LoginID, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// ListExcept 列出除 userID 之外的全部账号
func (d *AccountDAO) ListExcept(ctx context.Context, q postgres.Querier, userID int64) (_ []*model.Account, err error) {
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Select(accountColumns...).
		From(tableAccounts).
		Where(squirrel.NotEq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryAll[model.Account](ctx, q, query, args...)
}

// ListByIDs 批量查询
func (d *AccountDAO) ListByIDs(ctx context.Context, q postgres.Querier, userIDs []int64) (_ []*model.Account, err error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	query, args, err := postgres.QueryBuilder.
		Select(accountColumns...).
		From(tableAccounts).
		Where(squirrel.Eq{"user_id": userIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryAll[model.Account](ctx, q, query, args...)
}

// ListTop 按积分降序列出前 limit 个账号，limit <= 0 表示全部
func (d *AccountDAO) ListTop(ctx context.Context, q postgres.Querier, limit int) (_ []*model.Account, err error) {
	defer func(start time.Time) { observe(d.metrics, "select", start, err) }(time.Now())

	b := postgres.QueryBuilder.
		Select(accountColumns...).
		From(tableAccounts).
		OrderBy("rank_point DESC", "user_id ASC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.QueryAll[model.Account](ctx, q, query, args...)
}

// ApplyDelta 以相对增量更新账号，积分下限为 0，返回更新后的账号
func (d *AccountDAO) ApplyDelta(ctx context.Context, q postgres.Querier, userID int64, delta model.AccountDelta) (_ *model.Account, err error) {
	defer func(start time.Time) { observe(d.metrics, "update", start, err) }(time.Now())

	query, args, err := buildApplyDelta(userID, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	a, err := postgres.QueryOne[model.Account](ctx, q, query, args...)
	if err != nil && !postgres.IsNoRows(err) {
		d.logger.Error("failed to update account", "user_id", userID, "error", err)
	}
	return a, err
}

func buildApplyDelta(userID int64, delta model.AccountDelta) (string, []any, error) {
	b := postgres.QueryBuilder.
		Update(tableAccounts).
		Set("win_count", squirrel.Expr("win_count + ?", delta.Win)).
		Set("draw_count", squirrel.Expr("draw_count + ?", delta.Draw)).
		Set("lose_count", squirrel.Expr("lose_count + ?", delta.Lose)).
		Set("rank_point", squirrel.Expr("GREATEST(rank_point + ?, 0)", delta.RankPoint)).
		Set("user_cash", squirrel.Expr("user_cash + ?", delta.Cash)).
		Set("updated_at", squirrel.Expr("NOW()"))
	if delta.Tier != nil {
		b = b.Set("tier", *delta.Tier)
	}

	return b.
		Where(squirrel.Eq{"user_id": userID}).
		Suffix("RETURNING " + joinColumns(accountColumns)).
		ToSql()
}
