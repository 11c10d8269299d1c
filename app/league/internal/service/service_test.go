package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository/memstore"
	"github.com/lk2023060901/kickoff/app/league/internal/rules"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

var (
	statsAce    = model.Stats{Speed: 80, GoalDetermination: 70, ShootPower: 90, Defense: 40, Stamina: 60}
	statsBlaze  = model.Stats{Speed: 60, GoalDetermination: 60, ShootPower: 60, Defense: 60, Stamina: 60}
	statsCobalt = model.Stats{Speed: 40, GoalDetermination: 50, ShootPower: 30, Defense: 90, Stamina: 70}
	statsGolden = model.Stats{Speed: 99, GoalDetermination: 99, ShootPower: 99, Defense: 99, Stamina: 99}
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memstore.Store
	cfg   *rules.Config
	chars map[string]int64
	log   logger.Logger
	m     *metrics.LeagueMetrics
}

// newFixture 图鉴中包含 Ace、Blaze、Cobalt 与奖励角色
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memstore.New(),
		cfg:   rules.DefaultConfig(),
		chars: make(map[string]int64),
		log:   logger.NewNoop(),
		m:     metrics.NewNop(),
	}
	f.chars["Ace"] = f.store.AddCharacter("Ace", statsAce)
	f.chars["Blaze"] = f.store.AddCharacter("Blaze", statsBlaze)
	f.chars["Cobalt"] = f.store.AddCharacter("Cobalt", statsCobalt)
	f.chars[f.cfg.RewardCharacter] = f.store.AddCharacter(f.cfg.RewardCharacter, statsGolden)
	return f
}

func (f *fixture) account(rankPoint int, cash int64) int64 {
	return f.store.AddAccount(model.Account{
		RankPoint: rankPoint,
		UserCash:  cash,
		Tier:      f.cfg.TierFor(rankPoint),
	})
}

// player 创建账号并以 names 组成阵容
func (f *fixture) player(rankPoint int, names ...string) int64 {
	id := f.account(rankPoint, 0)
	for _, n := range names {
		f.own(id, n, model.Ownership{Quantity: 1, IsFormation: true})
	}
	return id
}

func (f *fixture) own(userID int64, name string, o model.Ownership) int64 {
	charID, ok := f.chars[name]
	require.True(f.t, ok, "unknown character %s", name)
	o.UserID = userID
	o.CharacterID = charID
	return f.store.AddOwnership(o)
}

func (f *fixture) ownership(userID int64, name string) (model.Ownership, bool) {
	for _, o := range f.store.Ownerships(userID) {
		if o.CharacterID == f.chars[name] {
			return o, true
		}
	}
	return model.Ownership{}, false
}

func requireKind(t *testing.T, err error, kind gameerr.Kind) *gameerr.Error {
	t.Helper()
	require.Error(t, err)
	e, ok := gameerr.As(err)
	require.True(t, ok, "expected business error, got %v", err)
	require.Equal(t, kind, e.Kind)
	return e
}
