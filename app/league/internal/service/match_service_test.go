package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/kickoff/app/league/internal/battle"
	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
	"github.com/lk2023060901/kickoff/pkg/idgen"
)

func acc(id int64, rp int) *model.Account {
	return &model.Account{UserID: id, RankPoint: rp}
}

func TestPickOpponent_WithinWindow(t *testing.T) {
	others := []*model.Account{acc(2, 60), acc(3, 140), acc(4, 151), acc(5, 30), acc(6, 150)}

	got, err := pickOpponent(100, others, 50, rng.NewScripted(nil, []int{1}))
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.UserID)

	// 窗口两端都包含在内
	got, err = pickOpponent(100, others, 50, rng.NewScripted(nil, []int{2}))
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.UserID)
}

func TestPickOpponent_UniformOverWindow(t *testing.T) {
	others := []*model.Account{acc(2, 90), acc(3, 100), acc(4, 110), acc(5, 500)}
	rnd := rng.NewSeeded(7)
	counts := map[int64]int{}
	for i := 0; i < 3000; i++ {
		got, err := pickOpponent(100, others, 50, rnd)
		require.NoError(t, err)
		counts[got.UserID]++
	}
	assert.Zero(t, counts[5])
	for _, id := range []int64{2, 3, 4} {
		assert.InDelta(t, 1000, counts[id], 150, "user %d", id)
	}
}

func TestPickOpponent_FallbackBelow(t *testing.T) {
	others := []*model.Account{acc(5, 40), acc(3, 40), acc(4, 10), acc(9, 200)}

	got, err := pickOpponent(100, others, 50, rng.NewScripted(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.UserID)
}

func TestPickOpponent_FallbackAbove(t *testing.T) {
	others := []*model.Account{acc(2, 300), acc(7, 160), acc(4, 160)}

	got, err := pickOpponent(100, others, 50, rng.NewScripted(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.UserID)
}

func TestPickOpponent_NoneAvailable(t *testing.T) {
	_, err := pickOpponent(100, nil, 50, rng.NewScripted(nil, nil))
	requireKind(t, err, gameerr.KindNoOpponentAvailable)
}

// fakeBoard 记录排行榜写入
type fakeBoard struct {
	mu       sync.Mutex
	upserted []int64
	replaced []int64
	top      []int64
	err      error
}

func (b *fakeBoard) Upsert(_ context.Context, accounts ...*model.Account) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range accounts {
		b.upserted = append(b.upserted, a.UserID)
	}
	return b.err
}

func (b *fakeBoard) Replace(_ context.Context, accounts []*model.Account) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replaced = b.replaced[:0]
	for _, a := range accounts {
		b.replaced = append(b.replaced, a.UserID)
	}
	return b.err
}

func (b *fakeBoard) Top(_ context.Context, limit int) ([]int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	if limit > 0 && len(b.top) > limit {
		return b.top[:limit], nil
	}
	return b.top, nil
}

// fakeEvents 记录投递的对局事件
type fakeEvents struct {
	mu      sync.Mutex
	records []*model.MatchRecord
	err     error
}

func (e *fakeEvents) PublishMatch(_ context.Context, rec *model.MatchRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = append(e.records, rec)
	return e.err
}

func (f *fixture) matchService(rnd rng.Source, board Leaderboard) *MatchService {
	return f.matchServiceWith(rnd, board, NopEvents{})
}

func (f *fixture) matchServiceWith(rnd rng.Source, board Leaderboard, events MatchEvents) *MatchService {
	ranking := NewRankingService(f.store, board, DefaultRankingConfig(), f.log)
	return NewMatchService(
		f.store,
		NewMatchFinder(f.store, f.cfg, rnd, f.log),
		battle.NewResolver(f.cfg.FormationSize, rnd),
		NewLedger(f.cfg, idgen.NewSequence(0), f.log),
		ranking,
		events,
		f.cfg,
		f.m,
		f.log,
	)
}

func TestMatchService_Ranked(t *testing.T) {
	f := newFixture(t)
	me := f.player(100, "Ace", "Blaze", "Cobalt")
	rival := f.player(120, "Ace", "Blaze", f.cfg.RewardCharacter)
	f.player(900, "Ace", "Blaze", "Cobalt")

	board := &fakeBoard{}
	// 第一个整数选中窗口内唯一的对手，浮点 0 保证主队获胜
	svc := f.matchService(rng.NewScripted([]float64{0}, []int{0}), board)

	res, err := svc.Ranked(f.ctx, me)
	require.NoError(t, err)
	assert.Equal(t, rival, res.Opponent.UserID)
	assert.Equal(t, model.SideA, res.Outcome.Winner)
	assert.True(t, res.Recorded)
	assert.Equal(t, int64(1), res.MatchID)
	assert.Equal(t, 10, res.RatingDelta)
	assert.Equal(t, int64(500), res.CashDelta)
	assert.Equal(t, 110, res.RankPoint)
	assert.True(t, strings.HasPrefix(res.Message, "Team A wins"))

	assert.Equal(t, 110, f.store.Account(me).RankPoint)
	assert.Equal(t, 110, f.store.Account(rival).RankPoint)
	assert.ElementsMatch(t, []int64{me, rival}, board.upserted)
}

func TestMatchService_PublishesCommittedMatches(t *testing.T) {
	f := newFixture(t)
	me := f.player(100, "Ace", "Blaze", "Cobalt")
	rival := f.player(120, "Ace", "Blaze", f.cfg.RewardCharacter)
	events := &fakeEvents{err: errors.New("broker unavailable")}

	svc := f.matchServiceWith(rng.NewScripted([]float64{0, 0.99}, []int{0}), nil, events)

	// 投递失败不影响已提交的结果
	res, err := svc.Ranked(f.ctx, me)
	require.NoError(t, err)
	require.Len(t, events.records, 1)
	rec := events.records[0]
	assert.Equal(t, res.MatchID, rec.MatchID)
	assert.Equal(t, model.ModeRanked, rec.Mode)
	assert.Equal(t, me, rec.HomeUserID)
	assert.Equal(t, rival, rec.AwayUserID)
	assert.Equal(t, 10, rec.HomeRatingDelta)
	assert.Equal(t, -10, rec.AwayRatingDelta)
	assert.Len(t, f.store.Records(), 1)

	// 未记录的友谊赛不产生事件
	_, err = svc.Friendly(f.ctx, me, rival)
	require.NoError(t, err)
	assert.Len(t, events.records, 1)
}

func TestMatchService_RankedNoOpponent(t *testing.T) {
	f := newFixture(t)
	me := f.player(100, "Ace", "Blaze", "Cobalt")

	_, err := f.matchService(rng.NewSeeded(1), nil).Ranked(f.ctx, me)
	requireKind(t, err, gameerr.KindNoOpponentAvailable)
}

func TestMatchService_FriendlyIsUnrecordedByDefault(t *testing.T) {
	f := newFixture(t)
	me := f.player(100, "Ace", "Blaze", "Cobalt")
	rival := f.player(800, "Blaze", "Cobalt", f.cfg.RewardCharacter)

	res, err := f.matchService(rng.NewScripted([]float64{0.99}, nil), nil).Friendly(f.ctx, me, rival)
	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.Equal(t, model.SideB, res.Outcome.Winner)
	assert.Equal(t, 100, f.store.Account(me).RankPoint)
	assert.Zero(t, f.store.Account(me).LoseCount)
	assert.Empty(t, f.store.Records())
}

func TestMatchService_FriendlyLedgerMode(t *testing.T) {
	f := newFixture(t)
	f.cfg.FriendlyRewards = "ledger"
	me := f.player(100, "Ace", "Blaze", "Cobalt")
	rival := f.player(800, "Blaze", "Cobalt", f.cfg.RewardCharacter)

	res, err := f.matchService(rng.NewScripted([]float64{0}, nil), nil).Friendly(f.ctx, me, rival)
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.Zero(t, res.CashDelta)
	assert.Equal(t, 110, f.store.Account(me).RankPoint)
	assert.Zero(t, f.store.Account(me).UserCash)
	require.Len(t, f.store.Records(), 1)
	assert.Equal(t, model.ModeFriendly, f.store.Records()[0].Mode)
}

func TestMatchService_EqualTeamsDraw(t *testing.T) {
	f := newFixture(t)
	f.cfg.FriendlyRewards = "ledger"
	me := f.player(100, "Ace", "Blaze", "Cobalt")
	rival := f.player(300, "Cobalt", "Ace", "Blaze")

	res, err := f.matchService(rng.NewSeeded(3), nil).Friendly(f.ctx, me, rival)
	require.NoError(t, err)
	assert.Equal(t, model.Draw, res.Outcome.Winner)
	assert.Equal(t, res.Outcome.GoalsA, res.Outcome.GoalsB)
	assert.True(t, strings.HasPrefix(res.Message, "Draw"))
	assert.Equal(t, 1, f.store.Account(me).DrawCount)
	assert.Equal(t, 1, f.store.Account(rival).DrawCount)
}

func TestMatchService_Rejections(t *testing.T) {
	f := newFixture(t)
	me := f.player(100, "Ace", "Blaze", "Cobalt")
	short := f.player(100, "Ace", "Blaze")
	svc := f.matchService(rng.NewSeeded(1), nil)

	_, err := svc.Friendly(f.ctx, me, me)
	requireKind(t, err, gameerr.KindSelfMatchNotAllowed)

	_, err = svc.Friendly(f.ctx, me, 404)
	requireKind(t, err, gameerr.KindNotFound)

	_, err = svc.Friendly(f.ctx, me, short)
	e := requireKind(t, err, gameerr.KindInvalidTeamSize)
	assert.Equal(t, model.SideB, e.Data["side"])
}

func TestMatchService_LevelBonus(t *testing.T) {
	f := newFixture(t)
	f.cfg.LevelStatBonus = 0.1
	me := f.account(0, 0)
	f.own(me, "Ace", model.Ownership{Quantity: 1, IsFormation: true, Level: 10})
	f.own(me, "Blaze", model.Ownership{Quantity: 1, IsFormation: true})
	f.own(me, "Cobalt", model.Ownership{Quantity: 1, IsFormation: true})

	team, err := f.matchService(rng.NewSeeded(1), nil).buildTeam(f.ctx, me)
	require.NoError(t, err)
	require.Len(t, team, 3)
	assert.Contains(t, team, statsAce.Scale(2))
	assert.Contains(t, team, statsBlaze)
}

func TestHeadline(t *testing.T) {
	assert.Equal(t, "Team A wins: A 3 - 1 B", Headline(&model.Outcome{Winner: model.SideA, GoalsA: 3, GoalsB: 1}))
	assert.Equal(t, "Team B wins: B 4 - 0 A", Headline(&model.Outcome{Winner: model.SideB, GoalsA: 0, GoalsB: 4}))
	assert.Equal(t, "Draw: A 2 - 2 B", Headline(&model.Outcome{Winner: model.Draw, GoalsA: 2, GoalsB: 2}))
}
