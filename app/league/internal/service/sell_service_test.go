package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
)

func (f *fixture) seller() *SellService {
	return NewSellService(f.store, NoopLocker{}, f.cfg, f.m, f.log)
}

func TestSell(t *testing.T) {
	f := newFixture(t)
	user := f.account(0, 100)
	f.own(user, "Ace", f.newOwnership(3))
	svc := f.seller()

	res, err := svc.Sell(f.ctx, user, "Ace", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sold)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, int64(2000), res.Earned)
	assert.Equal(t, int64(2100), res.UserCash)

	res, err = svc.Sell(f.ctx, user, "Ace", 1)
	require.NoError(t, err)
	assert.Zero(t, res.Remaining)
	assert.Equal(t, int64(3100), f.store.Account(user).UserCash)
	_, ok := f.ownership(user, "Ace")
	assert.False(t, ok)
}

func TestSell_Rejections(t *testing.T) {
	f := newFixture(t)
	user := f.account(0, 0)
	f.own(user, "Ace", f.newOwnership(2))
	f.own(user, "Blaze", model.Ownership{Quantity: 1, IsFormation: true})
	svc := f.seller()

	_, err := svc.Sell(f.ctx, user, "Ace", 0)
	requireKind(t, err, gameerr.KindInvalidSellQuantity)

	_, err = svc.Sell(f.ctx, user, "Ace", 3)
	e := requireKind(t, err, gameerr.KindInvalidSellQuantity)
	assert.Equal(t, 2, e.Data["available"])

	_, err = svc.Sell(f.ctx, user, "Blaze", 1)
	requireKind(t, err, gameerr.KindInvalidSellQuantity)

	_, err = svc.Sell(f.ctx, user, "Cobalt", 1)
	requireKind(t, err, gameerr.KindOwnsNoCharacter)

	assert.Zero(t, f.store.Account(user).UserCash)
	assert.Len(t, f.store.Ownerships(user), 2)
}
