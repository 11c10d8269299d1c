package repository

import (
	"context"

	"github.com/lk2023060901/kickoff/app/league/internal/dao"
	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/pkg/database/postgres"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// DAOs PostgreSQL 实现依赖的全部 DAO
type DAOs struct {
	Account     *dao.AccountDAO
	Character   *dao.CharacterDAO
	Ownership   *dao.OwnershipDAO
	MatchRecord *dao.MatchRecordDAO
}

// NewDAOs 供 Wire 组装
func NewDAOs(a *dao.AccountDAO, c *dao.CharacterDAO, o *dao.OwnershipDAO, m *dao.MatchRecordDAO) *DAOs {
	return &DAOs{Account: a, Character: c, Ownership: o, MatchRecord: m}
}

// pgStore PostgreSQL 存储实现，q 为连接池或当前事务
type pgStore struct {
	db     *postgres.Client
	q      postgres.Querier
	inTx   bool
	daos   *DAOs
	logger logger.Logger
}

// NewPostgresStore 创建 PostgreSQL 存储
func NewPostgresStore(db *postgres.Client, daos *DAOs, l logger.Logger) Store {
	return &pgStore{
		db:     db,
		q:      db,
		daos:   daos,
		logger: l.Named("repository.postgres"),
	}
}

func (s *pgStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	// 已在事务中时直接复用
	if s.inTx {
		return fn(ctx, s)
	}
	return s.db.WithTx(ctx, func(tx postgres.Tx) error {
		return fn(ctx, &pgStore{db: s.db, q: tx, inTx: true, daos: s.daos, logger: s.logger})
	})
}

// mapNotFound 将 ErrNoRows 转换为 NotFound 业务错误
func mapNotFound(err error, format string, args ...any) error {
	if err != nil && postgres.IsNoRows(err) {
		return gameerr.New(gameerr.KindNotFound, format, args...)
	}
	return err
}

// ===== 账号 =====

func (s *pgStore) GetAccount(ctx context.Context, userID int64) (*model.Account, error) {
	a, err := s.daos.Account.GetByID(ctx, s.q, userID, false)
	return a, mapNotFound(err, "account %d not found", userID)
}

func (s *pgStore) GetAccountByLoginID(ctx context.Context, loginID string) (*model.Account, error) {
	a, err := s.daos.Account.GetByLoginID(ctx, s.q, loginID)
	return a, mapNotFound(err, "account %q not found", loginID)
}

func (s *pgStore) AccountExists(ctx context.Context, loginID, userName string) (bool, error) {
	return s.daos.Account.ExistsByLoginOrName(ctx, s.q, loginID, userName)
}

func (s *pgStore) CreateAccount(ctx context.Context, a *model.Account) error {
	return s.daos.Account.Create(ctx, s.q, a)
}

func (s *pgStore) ListAccounts(ctx context.Context, excludeUserID int64) ([]*model.Account, error) {
	return s.daos.Account.ListExcept(ctx, s.q, excludeUserID)
}

func (s *pgStore) ListAccountsByIDs(ctx context.Context, userIDs []int64) ([]*model.Account, error) {
	return s.daos.Account.ListByIDs(ctx, s.q, userIDs)
}

func (s *pgStore) ListTopAccounts(ctx context.Context, limit int) ([]*model.Account, error) {
	return s.daos.Account.ListTop(ctx, s.q, limit)
}

func (s *pgStore) LockAccount(ctx context.Context, userID int64) (*model.Account, error) {
	a, err := s.daos.Account.GetByID(ctx, s.q, userID, s.inTx)
	return a, mapNotFound(err, "account %d not found", userID)
}

func (s *pgStore) UpdateAccount(ctx context.Context, userID int64, delta model.AccountDelta) (*model.Account, error) {
	a, err := s.daos.Account.ApplyDelta(ctx, s.q, userID, delta)
	return a, mapNotFound(err, "account %d not found", userID)
}

// ===== 图鉴 =====

func (s *pgStore) FindCharacterByName(ctx context.Context, name string) (*model.Character, error) {
	c, err := s.daos.Character.GetByName(ctx, s.q, name)
	return c, mapNotFound(err, "character %q not found", name)
}

func (s *pgStore) FindCharactersByIDs(ctx context.Context, ids []int64) ([]*model.Character, error) {
	return s.daos.Character.ListByIDs(ctx, s.q, ids)
}

func (s *pgStore) ListAllCharacters(ctx context.Context) ([]*model.Character, error) {
	return s.daos.Character.ListAll(ctx, s.q)
}

// ===== 持有记录 =====

func (s *pgStore) ListOwnership(ctx context.Context, userID int64) ([]*model.Ownership, error) {
	return s.daos.Ownership.ListByUser(ctx, s.q, userID, false)
}

func (s *pgStore) ListFormation(ctx context.Context, userID int64) ([]*model.Ownership, error) {
	return s.daos.Ownership.ListByUser(ctx, s.q, userID, true)
}

func (s *pgStore) FindOwnership(ctx context.Context, userID, characterID int64) (*model.Ownership, error) {
	o, err := s.daos.Ownership.Get(ctx, s.q, userID, characterID, false)
	return o, mapNotFound(err, "user %d owns no character %d", userID, characterID)
}

func (s *pgStore) LockOwnership(ctx context.Context, userID, characterID int64) (*model.Ownership, error) {
	o, err := s.daos.Ownership.Get(ctx, s.q, userID, characterID, s.inTx)
	return o, mapNotFound(err, "user %d owns no character %d", userID, characterID)
}

func (s *pgStore) CreateOwnership(ctx context.Context, o *model.Ownership) error {
	return s.daos.Ownership.Create(ctx, s.q, o)
}

func (s *pgStore) UpdateOwnership(ctx context.Context, o *model.Ownership) error {
	return mapNotFound(s.daos.Ownership.Update(ctx, s.q, o), "ownership %d not found", o.CharacterListID)
}

func (s *pgStore) DeleteOwnership(ctx context.Context, characterListID int64) error {
	return s.daos.Ownership.Delete(ctx, s.q, characterListID)
}

func (s *pgStore) ClearFormation(ctx context.Context, userID int64) error {
	return s.daos.Ownership.ClearFormation(ctx, s.q, userID)
}

// ===== 对局历史 =====

func (s *pgStore) InsertMatchRecord(ctx context.Context, r *model.MatchRecord) error {
	return s.daos.MatchRecord.Insert(ctx, s.q, r)
}

func (s *pgStore) ListMatchRecords(ctx context.Context, userID int64, limit int) ([]*model.MatchRecord, error) {
	return s.daos.MatchRecord.ListByUser(ctx, s.q, userID, limit)
}
