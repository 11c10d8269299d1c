// Package repository 聚合账号、图鉴、持有记录与对局历史的存储访问。
//
// 服务层只依赖 Store 接口；生产环境使用 PostgreSQL 实现，测试与模拟使用 memstore。
package repository

import (
	"context"

	"github.com/lk2023060901/kickoff/app/league/internal/model"
)

// Tx 在同一事务（或同一连接）内可用的全部存储操作
//
// 查询不到记录时返回 gameerr.KindNotFound 类别的错误
type Tx interface {
	// ===== 账号 =====
	GetAccount(ctx context.Context, userID int64) (*model.Account, error)
	GetAccountByLoginID(ctx context.Context, loginID string) (*model.Account, error)
	AccountExists(ctx context.Context, loginID, userName string) (bool, error)
	CreateAccount(ctx context.Context, a *model.Account) error
	// ListAccounts 除 excludeUserID 之外的全部账号
	ListAccounts(ctx context.Context, excludeUserID int64) ([]*model.Account, error)
	ListAccountsByIDs(ctx context.Context, userIDs []int64) ([]*model.Account, error)
	// ListTopAccounts 按积分降序，同分按 user_id 升序
	ListTopAccounts(ctx context.Context, limit int) ([]*model.Account, error)
	// LockAccount 在事务内锁定账号行
	LockAccount(ctx context.Context, userID int64) (*model.Account, error)
	UpdateAccount(ctx context.Context, userID int64, delta model.AccountDelta) (*model.Account, error)

	// ===== 图鉴 =====
	FindCharacterByName(ctx context.Context, name string) (*model.Character, error)
	FindCharactersByIDs(ctx context.Context, ids []int64) ([]*model.Character, error)
	ListAllCharacters(ctx context.Context) ([]*model.Character, error)

	// ===== 持有记录 =====
	ListOwnership(ctx context.Context, userID int64) ([]*model.Ownership, error)
	ListFormation(ctx context.Context, userID int64) ([]*model.Ownership, error)
	FindOwnership(ctx context.Context, userID, characterID int64) (*model.Ownership, error)
	LockOwnership(ctx context.Context, userID, characterID int64) (*model.Ownership, error)
	CreateOwnership(ctx context.Context, o *model.Ownership) error
	UpdateOwnership(ctx context.Context, o *model.Ownership) error
	DeleteOwnership(ctx context.Context, characterListID int64) error
	ClearFormation(ctx context.Context, userID int64) error

	// ===== 对局历史 =====
	InsertMatchRecord(ctx context.Context, r *model.MatchRecord) error
	ListMatchRecords(ctx context.Context, userID int64, limit int) ([]*model.MatchRecord, error)
}

// Store 存储入口
type Store interface {
	Tx
	// WithTx 在单个事务中执行 fn，fn 返回错误或 panic 时整体回滚
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
