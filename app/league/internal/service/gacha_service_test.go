package service

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/repository/memstore"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
)

func (f *fixture) gacha(rnd rng.Source) *GachaService {
	return NewGachaService(f.store, NoopLocker{}, f.cfg, rnd, f.m, f.log)
}

func TestGacha_Draw(t *testing.T) {
	f := newFixture(t)
	user := f.account(0, 1500)

	drawn, err := f.gacha(rng.NewScripted(nil, []int{0, 1, 0})).Draw(f.ctx, user, 3)
	require.NoError(t, err)
	require.Len(t, drawn, 3)

	assert.Equal(t, "Ace", drawn[0].Name)
	assert.True(t, drawn[0].New)
	assert.Equal(t, 1, drawn[0].Quantity)
	assert.Equal(t, statsAce, drawn[0].Stats)

	assert.Equal(t, "Blaze", drawn[1].Name)
	assert.True(t, drawn[1].New)

	assert.Equal(t, "Ace", drawn[2].Name)
	assert.False(t, drawn[2].New)
	assert.Equal(t, 2, drawn[2].Quantity)

	assert.Zero(t, f.store.Account(user).UserCash)
	ace, ok := f.ownership(user, "Ace")
	require.True(t, ok)
	assert.Equal(t, 2, ace.Quantity)
	assert.Zero(t, ace.Level)
	assert.False(t, ace.IsFormation)
	assert.Len(t, f.store.Ownerships(user), 2)
}

func TestGacha_InvalidCount(t *testing.T) {
	f := newFixture(t)
	user := f.account(0, 1500)

	for _, n := range []int{0, -1} {
		_, err := f.gacha(rng.NewSeeded(1)).Draw(f.ctx, user, n)
		requireKind(t, err, gameerr.KindInvalidDrawCount)
	}
	assert.Equal(t, int64(1500), f.store.Account(user).UserCash)
}

func TestGacha_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	user := f.account(0, 1000)

	_, err := f.gacha(rng.NewSeeded(1)).Draw(f.ctx, user, 3)
	e := requireKind(t, err, gameerr.KindInsufficientFunds)
	assert.Equal(t, int64(1500), e.Data["required"])
	assert.Equal(t, int64(1000), e.Data["available"])
	assert.Equal(t, int64(1000), f.store.Account(user).UserCash)
	assert.Empty(t, f.store.Ownerships(user))
}

// TestGacha_HugeCount 总价超出 int64 时按余额不足处理，不发放也不扣款
func TestGacha_HugeCount(t *testing.T) {
	f := newFixture(t)
	user := f.account(0, 1500)
	svc := f.gacha(rng.NewSeeded(1))

	for _, n := range []int{1 << 62, math.MaxInt64/500 + 1, math.MaxInt} {
		var err error
		require.NotPanics(t, func() { _, err = svc.Draw(f.ctx, user, n) })
		e := requireKind(t, err, gameerr.KindInsufficientFunds)
		assert.Equal(t, int64(1500), e.Data["available"])
	}

	_, err := svc.Draw(f.ctx, user, 1<<40)
	e := requireKind(t, err, gameerr.KindInsufficientFunds)
	assert.Equal(t, int64(1<<40)*500, e.Data["required"])

	assert.Equal(t, int64(1500), f.store.Account(user).UserCash)
	assert.Empty(t, f.store.Ownerships(user))
}

func TestGacha_EmptyCatalog(t *testing.T) {
	f := newFixture(t)
	f.store = memstore.New()
	user := f.account(0, 5000)

	_, err := f.gacha(rng.NewSeeded(1)).Draw(f.ctx, user, 1)
	requireKind(t, err, gameerr.KindNoCatalogAvailable)
	assert.Equal(t, int64(5000), f.store.Account(user).UserCash)
}

func TestGacha_GrantFailureRollsBack(t *testing.T) {
	boom := errors.New("connection reset")

	for _, op := range []string{"CreateOwnership", "UpdateOwnership"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			user := f.account(0, 1500)
			f.own(user, "Ace", f.newOwnership(3))
			f.store.FailOn(op, 0, boom)

			// Blaze 走新建，Ace 走累加
			_, err := f.gacha(rng.NewScripted(nil, []int{1, 0, 2})).Draw(f.ctx, user, 3)
			require.Error(t, err)
			assert.Equal(t, gameerr.KindStoreFailure, gameerr.KindOf(err))
			assert.ErrorIs(t, err, boom)

			assert.Equal(t, int64(1500), f.store.Account(user).UserCash)
			owned := f.store.Ownerships(user)
			require.Len(t, owned, 1)
			assert.Equal(t, 3, owned[0].Quantity)
		})
	}
}
