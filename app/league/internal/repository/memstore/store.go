package memstore

import (
	"context"
	"errors"

	"github.com/lk2023060901/kickoff/app/league/internal/model"
)

var errDuplicateOwnership = errors.New("memstore: duplicate (user_id, character_id)")

// do 在锁内以 view 执行单个操作
func do[T any](s *Store, fn func(v *view) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{s: s})
}

func (s *Store) GetAccount(ctx context.Context, userID int64) (*model.Account, error) {
	return do(s, func(v *view) (*model.Account, error) { return v.GetAccount(ctx, userID) })
}

func (s *Store) GetAccountByLoginID(ctx context.Context, loginID string) (*model.Account, error) {
	return do(s, func(v *view) (*model.Account, error) { return v.GetAccountByLoginID(ctx, loginID) })
}

func (s *Store) AccountExists(ctx context.Context, loginID, userName string) (bool, error) {
	return do(s, func(v *view) (bool, error) { return v.AccountExists(ctx, loginID, userName) })
}

func (s *Store) CreateAccount(ctx context.Context, a *model.Account) error {
	_, err := do(s, func(v *view) (struct{}, error) { return struct{}{}, v.CreateAccount(ctx, a) })
	return err
}

func (s *Store) ListAccounts(ctx context.Context, excludeUserID int64) ([]*model.Account, error) {
	return do(s, func(v *view) ([]*model.Account, error) { return v.ListAccounts(ctx, excludeUserID) })
}

func (s *Store) ListAccountsByIDs(ctx context.Context, userIDs []int64) ([]*model.Account, error) {
	return do(s, func(v *view) ([]*model.Account, error) { return v.ListAccountsByIDs(ctx, userIDs) })
}

func (s *Store) ListTopAccounts(ctx context.Context, limit int) ([]*model.Account, error) {
	return do(s, func(v *view) ([]*model.Account, error) { return v.ListTopAccounts(ctx, limit) })
}

func (s *Store) LockAccount(ctx context.Context, userID int64) (*model.Account, error) {
	return do(s, func(v *view) (*model.Account, error) { return v.LockAccount(ctx, userID) })
}

func (s *Store) UpdateAccount(ctx context.Context, userID int64, delta model.AccountDelta) (*model.Account, error) {
	return do(s, func(v *view) (*model.Account, error) { return v.UpdateAccount(ctx, userID, delta) })
}

func (s *Store) FindCharacterByName(ctx context.Context, name string) (*model.Character, error) {
	return do(s, func(v *view) (*model.Character, error) { return v.FindCharacterByName(ctx, name) })
}

func (s *Store) FindCharactersByIDs(ctx context.Context, ids []int64) ([]*model.Character, error) {
	return do(s, func(v *view) ([]*model.Character, error) { return v.FindCharactersByIDs(ctx, ids) })
}

func (s *Store) ListAllCharacters(ctx context.Context) ([]*model.Character, error) {
	return do(s, func(v *view) ([]*model.Character, error) { return v.ListAllCharacters(ctx) })
}

func (s *Store) ListOwnership(ctx context.Context, userID int64) ([]*model.Ownership, error) {
	return do(s, func(v *view) ([]*model.Ownership, error) { return v.ListOwnership(ctx, userID) })
}

func (s *Store) ListFormation(ctx context.Context, userID int64) ([]*model.Ownership, error) {
	return do(s, func(v *view) ([]*model.Ownership, error) { return v.ListFormation(ctx, userID) })
}

func (s *Store) FindOwnership(ctx context.Context, userID, characterID int64) (*model.Ownership, error) {
	return do(s, func(v *view) (*model.Ownership, error) { return v.FindOwnership(ctx, userID, characterID) })
}

func (s *Store) LockOwnership(ctx context.Context, userID, characterID int64) (*model.Ownership, error) {
	return do(s, func(v *view) (*model.Ownership, error) { return v.LockOwnership(ctx, userID, characterID) })
}

func (s *Store) CreateOwnership(ctx context.Context, o *model.Ownership) error {
	_, err := do(s, func(v *view) (struct{}, error) { return struct{}{}, v.CreateOwnership(ctx, o) })
	return err
}

func (s *Store) UpdateOwnership(ctx context.Context, o *model.Ownership) error {
	_, err := do(s, func(v *view) (struct{}, error) { return struct{}{}, v.UpdateOwnership(ctx, o) })
	return err
}

func (s *Store) DeleteOwnership(ctx context.Context, characterListID int64) error {
	_, err := do(s, func(v *view) (struct{}, error) { return struct{}{}, v.DeleteOwnership(ctx, characterListID) })
	return err
}

func (s *Store) ClearFormation(ctx context.Context, userID int64) error {
	_, err := do(s, func(v *view) (struct{}, error) { return struct{}{}, v.ClearFormation(ctx, userID) })
	return err
}

func (s *Store) InsertMatchRecord(ctx context.Context, r *model.MatchRecord) error {
	_, err := do(s, func(v *view) (struct{}, error) { return struct{}{}, v.InsertMatchRecord(ctx, r) })
	return err
}

func (s *Store) ListMatchRecords(ctx context.Context, userID int64, limit int) ([]*model.MatchRecord, error) {
	return do(s, func(v *view) ([]*model.MatchRecord, error) { return v.ListMatchRecords(ctx, userID, limit) })
}
