package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository/memstore"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
)

// TestConcurrentDrawAndEnhance 同一持有记录上的并发抽卡与强化互不覆盖
func TestConcurrentDrawAndEnhance(t *testing.T) {
	f := newFixture(t)
	// 图鉴只有 Ace，每次抽卡都落在同一条持有记录上
	f.store = memstore.New()
	f.chars = map[string]int64{"Ace": f.store.AddCharacter("Ace", statsAce)}
	f.cfg.LevelSuccessStep = 0

	const draws, enhances = 40, 8
	user := f.account(0, draws*f.cfg.DrawCost)
	f.own(user, "Ace", model.Ownership{Quantity: 100})

	gacha := f.gacha(rng.NewSeeded(1))
	enhancer := f.enhancer(rng.NewSeeded(2))

	var wg sync.WaitGroup
	errs := make(chan error, draws+enhances)
	for i := 0; i < draws; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gacha.Draw(f.ctx, user, 1)
			errs <- err
		}()
	}
	for i := 0; i < enhances; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := enhancer.Enhance(f.ctx, user, "Ace")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Zero(t, f.store.Account(user).UserCash)

	ace, ok := f.ownership(user, "Ace")
	require.True(t, ok)
	// 强化每次都成功，第 n 次消耗 n-1 个：0+1+...+7 = 28
	assert.Equal(t, 100+draws-28, ace.Quantity)
	assert.Equal(t, enhances, ace.Level)
	assert.Zero(t, ace.Ceiling)
	assert.Len(t, f.store.Ownerships(user), 1)
}

// TestConcurrentDraws_InsufficientFundsUnderContention 余额只够部分请求时恰好成功对应次数
func TestConcurrentDraws_InsufficientFundsUnderContention(t *testing.T) {
	f := newFixture(t)
	user := f.account(0, 5*f.cfg.DrawCost)
	gacha := f.gacha(rng.NewSeeded(3))

	const workers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := gacha.Draw(f.ctx, user, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Zero(t, f.store.Account(user).UserCash)
	total := 0
	for _, o := range f.store.Ownerships(user) {
		total += o.Quantity
	}
	assert.Equal(t, 5, total)
}
