package memstore

import (
	"context"
	"time"

	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository"
)

// view 在已持有 s.mu 的前提下访问状态
type view struct {
	s *Store
}

var _ repository.Tx = (*view)(nil)

// ===== 账号 =====

func (v *view) GetAccount(_ context.Context, userID int64) (*model.Account, error) {
	if err := v.s.check("GetAccount"); err != nil {
		return nil, err
	}
	a, ok := v.s.st.accounts[userID]
	if !ok {
		return nil, notFound("account %d not found", userID)
	}
	cp := *a
	return &cp, nil
}

func (v *view) GetAccountByLoginID(_ context.Context, loginID string) (*model.Account, error) {
	if err := v.s.check("GetAccountByLoginID"); err != nil {
		return nil, err
	}
	for _, a := range v.s.st.accounts {
		if a.LoginID == loginID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, notFound("account %q not found", loginID)
}

func (v *view) AccountExists(_ context.Context, loginID, userName string) (bool, error) {
	if err := v.s.check("AccountExists"); err != nil {
		return false, err
	}
	for _, a := range v.s.st.accounts {
		if a.LoginID == loginID || a.UserName == userName {
			return true, nil
		}
	}
	return false, nil
}

func (v *view) CreateAccount(_ context.Context, a *model.Account) error {
	if err := v.s.check("CreateAccount"); err != nil {
		return err
	}
	a.UserID = v.s.st.nextUserID
	v.s.st.nextUserID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	v.s.st.accounts[a.UserID] = &cp
	return nil
}

func (v *view) ListAccounts(_ context.Context, excludeUserID int64) ([]*model.Account, error) {
	if err := v.s.check("ListAccounts"); err != nil {
		return nil, err
	}
	out := make([]*model.Account, 0, len(v.s.st.accounts))
	for id, a := range v.s.st.accounts {
		if id == excludeUserID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sortedAccounts(out)
	return out, nil
}

func (v *view) ListAccountsByIDs(_ context.Context, userIDs []int64) ([]*model.Account, error) {
	if err := v.s.check("ListAccountsByIDs"); err != nil {
		return nil, err
	}
	out := make([]*model.Account, 0, len(userIDs))
	for _, id := range userIDs {
		if a, ok := v.s.st.accounts[id]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (v *view) ListTopAccounts(ctx context.Context, limit int) ([]*model.Account, error) {
	if err := v.s.check("ListTopAccounts"); err != nil {
		return nil, err
	}
	out := make([]*model.Account, 0, len(v.s.st.accounts))
	for _, a := range v.s.st.accounts {
		cp := *a
		out = append(out, &cp)
	}
	sortedAccounts(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *view) LockAccount(ctx context.Context, userID int64) (*model.Account, error) {
	if err := v.s.check("LockAccount"); err != nil {
		return nil, err
	}
	a, ok := v.s.st.accounts[userID]
	if !ok {
		return nil, notFound("account %d not found", userID)
	}
	cp := *a
	return &cp, nil
}

func (v *view) UpdateAccount(_ context.Context, userID int64, delta model.AccountDelta) (*model.Account, error) {
	if err := v.s.check("UpdateAccount"); err != nil {
		return nil, err
	}
	a, ok := v.s.st.accounts[userID]
	if !ok {
		return nil, notFound("account %d not found", userID)
	}
	updated := a.Apply(delta)
	updated.UpdatedAt = time.Now()
	*a = updated
	cp := updated
	return &cp, nil
}

// ===== 图鉴 =====

func (v *view) FindCharacterByName(_ context.Context, name string) (*model.Character, error) {
	if err := v.s.check("FindCharacterByName"); err != nil {
		return nil, err
	}
	for _, c := range v.s.st.characters {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFound("character %q not found", name)
}

func (v *view) FindCharactersByIDs(_ context.Context, ids []int64) ([]*model.Character, error) {
	if err := v.s.check("FindCharactersByIDs"); err != nil {
		return nil, err
	}
	out := make([]*model.Character, 0, len(ids))
	for _, id := range ids {
		if c, ok := v.s.st.characters[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (v *view) ListAllCharacters(_ context.Context) ([]*model.Character, error) {
	if err := v.s.check("ListAllCharacters"); err != nil {
		return nil, err
	}
	out := make([]*model.Character, 0, len(v.s.st.characters))
	for id := int64(1); id < v.s.st.nextCharID; id++ {
		if c, ok := v.s.st.characters[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ===== 持有记录 =====

func (v *view) listOwnership(userID int64, formationOnly bool) []*model.Ownership {
	var out []*model.Ownership
	for id := int64(1); id < v.s.st.nextOwnerID; id++ {
		o, ok := v.s.st.ownerships[id]
		if !ok || o.UserID != userID || (formationOnly && !o.IsFormation) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out
}

func (v *view) ListOwnership(_ context.Context, userID int64) ([]*model.Ownership, error) {
	if err := v.s.check("ListOwnership"); err != nil {
		return nil, err
	}
	return v.listOwnership(userID, false), nil
}

func (v *view) ListFormation(_ context.Context, userID int64) ([]*model.Ownership, error) {
	if err := v.s.check("ListFormation"); err != nil {
		return nil, err
	}
	return v.listOwnership(userID, true), nil
}

func (v *view) findOwnership(userID, characterID int64) (*model.Ownership, error) {
	for _, o := range v.s.st.ownerships {
		if o.UserID == userID && o.CharacterID == characterID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, notFound("user %d owns no character %d", userID, characterID)
}

func (v *view) FindOwnership(_ context.Context, userID, characterID int64) (*model.Ownership, error) {
	if err := v.s.check("FindOwnership"); err != nil {
		return nil, err
	}
	return v.findOwnership(userID, characterID)
}

func (v *view) LockOwnership(_ context.Context, userID, characterID int64) (*model.Ownership, error) {
	if err := v.s.check("LockOwnership"); err != nil {
		return nil, err
	}
	return v.findOwnership(userID, characterID)
}

func (v *view) CreateOwnership(_ context.Context, o *model.Ownership) error {
	if err := v.s.check("CreateOwnership"); err != nil {
		return err
	}
	if _, err := v.findOwnership(o.UserID, o.CharacterID); err == nil {
		return errDuplicateOwnership
	}
	o.CharacterListID = v.s.st.nextOwnerID
	v.s.st.nextOwnerID++
	cp := *o
	v.s.st.ownerships[o.CharacterListID] = &cp
	return nil
}

func (v *view) UpdateOwnership(_ context.Context, o *model.Ownership) error {
	if err := v.s.check("UpdateOwnership"); err != nil {
		return err
	}
	cur, ok := v.s.st.ownerships[o.CharacterListID]
	if !ok {
		return notFound("ownership %d not found", o.CharacterListID)
	}
	cur.Quantity = o.Quantity
	cur.IsFormation = o.IsFormation
	cur.Level = o.Level
	cur.Ceiling = o.Ceiling
	return nil
}

func (v *view) DeleteOwnership(_ context.Context, characterListID int64) error {
	if err := v.s.check("DeleteOwnership"); err != nil {
		return err
	}
	delete(v.s.st.ownerships, characterListID)
	return nil
}

func (v *view) ClearFormation(_ context.Context, userID int64) error {
	if err := v.s.check("ClearFormation"); err != nil {
		return err
	}
	for _, o := range v.s.st.ownerships {
		if o.UserID == userID {
			o.IsFormation = false
		}
	}
	return nil
}

// ===== 对局历史 =====

func (v *view) InsertMatchRecord(_ context.Context, r *model.MatchRecord) error {
	if err := v.s.check("InsertMatchRecord"); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cp := *r
	v.s.st.records = append(v.s.st.records, &cp)
	return nil
}

func (v *view) ListMatchRecords(_ context.Context, userID int64, limit int) ([]*model.MatchRecord, error) {
	if err := v.s.check("ListMatchRecords"); err != nil {
		return nil, err
	}
	var out []*model.MatchRecord
	for i := len(v.s.st.records) - 1; i >= 0; i-- {
		r := v.s.st.records[i]
		if r.HomeUserID != userID && r.AwayUserID != userID {
			continue
		}
		cp := *r
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
