// Package memstore 提供 repository.Store 的内存实现。
//
// 事务通过整体快照实现：进入 WithTx 时复制全部状态，fn 失败或 panic 时恢复快照。
// 所有事务串行执行，用于单元测试与离线模拟。
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository"
)

type state struct {
	accounts    map[int64]*model.Account
	characters  map[int64]*model.Character
	ownerships  map[int64]*model.Ownership
	records     []*model.MatchRecord
	nextUserID  int64
	nextCharID  int64
	nextOwnerID int64
}

func newState() *state {
	return &state{
		accounts:    make(map[int64]*model.Account),
		characters:  make(map[int64]*model.Character),
		ownerships:  make(map[int64]*model.Ownership),
		nextUserID:  1,
		nextCharID:  1,
		nextOwnerID: 1,
	}
}

func (st *state) clone() *state {
	c := &state{
		accounts:    make(map[int64]*model.Account, len(st.accounts)),
		characters:  st.characters, // 图鉴只读
		ownerships:  make(map[int64]*model.Ownership, len(st.ownerships)),
		records:     slices.Clone(st.records),
		nextUserID:  st.nextUserID,
		nextCharID:  st.nextCharID,
		nextOwnerID: st.nextOwnerID,
	}
	for id, a := range st.accounts {
		cp := *a
		c.accounts[id] = &cp
	}
	for id, o := range st.ownerships {
		cp := *o
		c.ownerships[id] = &cp
	}
	return c
}

// failRule 第 after+1 次调用 op 时返回 err
type failRule struct {
	after int
	err   error
}

// Store 内存存储
type Store struct {
	mu    sync.Mutex
	st    *state
	calls map[string]int
	rules map[string]failRule
}

var _ repository.Store = (*Store)(nil)

// New 创建空存储
func New() *Store {
	return &Store{
		st:    newState(),
		calls: make(map[string]int),
		rules: make(map[string]failRule),
	}
}

// FailOn 让 op 在成功执行 after 次之后返回 err，op 为 Tx 接口的方法名
func (s *Store) FailOn(op string, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[op] = failRule{after: after, err: err}
	s.calls[op] = 0
}

// ClearFailures 清除全部故障注入
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = make(map[string]failRule)
}

// Calls op 被调用的次数（包含失败的调用）
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// ===== 数据准备 =====

// AddCharacter 向图鉴添加角色并返回其 ID
func (s *Store) AddCharacter(name string, stats model.Stats) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.st.nextCharID
	s.st.nextCharID++
	s.st.characters[id] = &model.Character{CharacterID: id, Name: name, Stats: stats}
	return id
}

// AddAccount 直接写入账号，UserID 为 0 时自动分配
func (s *Store) AddAccount(a model.Account) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.UserID == 0 {
		a.UserID = s.st.nextUserID
	}
	if a.UserID >= s.st.nextUserID {
		s.st.nextUserID = a.UserID + 1
	}
	if a.Tier == "" {
		a.Tier = model.TierBronze
	}
	if a.LoginID == "" {
		a.LoginID = fmt.Sprintf("user%d", a.UserID)
	}
	if a.UserName == "" {
		a.UserName = a.LoginID
	}
	s.st.accounts[a.UserID] = &a
	return a.UserID
}

// AddOwnership 直接写入持有记录
func (s *Store) AddOwnership(o model.Ownership) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.CharacterListID = s.st.nextOwnerID
	s.st.nextOwnerID++
	s.st.ownerships[o.CharacterListID] = &o
	return o.CharacterListID
}

// Account 读取账号快照，不存在时返回 nil
func (s *Store) Account(userID int64) *model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.accounts[userID]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

// Ownerships 读取账号的全部持有记录快照
func (s *Store) Ownerships(userID int64) []model.Ownership {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Ownership
	for _, o := range s.st.ownerships {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CharacterListID < out[j].CharacterListID })
	return out
}

// Records 全部对局记录
func (s *Store) Records() []model.MatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MatchRecord, 0, len(s.st.records))
	for _, r := range s.st.records {
		out = append(out, *r)
	}
	return out
}

// ===== 事务 =====

// WithTx 串行执行事务，失败或 panic 时恢复快照
//
// fn 内只能通过 tx 访问存储，在 fn 内再次调用 s 的方法会死锁
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()

	return fn(ctx, &view{s: s})
}

// check 记录调用并判断是否需要注入故障，调用方需持有 s.mu
func (s *Store) check(op string) error {
	n := s.calls[op]
	s.calls[op] = n + 1
	if r, ok := s.rules[op]; ok && n >= r.after {
		return r.err
	}
	return nil
}

func notFound(format string, args ...any) error {
	return gameerr.New(gameerr.KindNotFound, format, args...)
}

func sortedAccounts(in []*model.Account) {
	sort.Slice(in, func(i, j int) bool {
		if in[i].RankPoint != in[j].RankPoint {
			return in[i].RankPoint > in[j].RankPoint
		}
		return in[i].UserID < in[j].UserID
	})
}
