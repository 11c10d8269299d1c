package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
)

func team(stats ...model.Stats) []model.Stats { return stats }

func TestScore(t *testing.T) {
	s := model.Stats{Speed: 10, GoalDetermination: 10, ShootPower: 10, Defense: 10, Stamina: 10}
	assert.InDelta(t, 10.5, Score(s), 1e-9)
	assert.InDelta(t, 31.5, TeamScore(team(s, s, s)), 1e-9)
	assert.InDelta(t, 40.0, Score(model.Stats{Defense: 100}), 1e-9)
}

func TestResolve_InvalidTeamSize(t *testing.T) {
	r := NewResolver(3, rng.NewSeeded(1))
	s := model.Stats{Speed: 1}

	_, err := r.Resolve(team(s, s), team(s, s, s))
	require.Error(t, err)
	assert.Equal(t, gameerr.KindInvalidTeamSize, gameerr.KindOf(err))

	_, err = r.Resolve(team(s, s, s), team(s, s, s, s))
	assert.Equal(t, gameerr.KindInvalidTeamSize, gameerr.KindOf(err))
}

func TestResolve_EqualScoresAlwaysDraw(t *testing.T) {
	r := NewResolver(3, rng.NewSeeded(99))
	a := team(
		model.Stats{Speed: 80, GoalDetermination: 70, ShootPower: 60, Defense: 50, Stamina: 40},
		model.Stats{Speed: 10, GoalDetermination: 20, ShootPower: 30, Defense: 40, Stamina: 50},
		model.Stats{Defense: 100},
	)
	// 成员不同但总分相同
	b := team(a[2], a[0], a[1])

	for i := 0; i < 500; i++ {
		out, err := r.Resolve(a, b)
		require.NoError(t, err)
		assert.Equal(t, model.Draw, out.Winner)
		assert.Equal(t, out.GoalsA, out.GoalsB)
	}

	zero := team(model.Stats{}, model.Stats{}, model.Stats{})
	out, err := r.Resolve(zero, zero)
	require.NoError(t, err)
	assert.Equal(t, model.Draw, out.Winner)
}

func TestDecide_WinRateFollowsScore(t *testing.T) {
	r := NewResolver(3, rng.NewSeeded(2024))
	const trials = 20000
	wins := 0
	for i := 0; i < trials; i++ {
		if r.Decide(70, 30).Winner == model.SideA {
			wins++
		}
	}
	assert.InDelta(t, 0.70, float64(wins)/trials, 0.02)
}

func TestDecide_Scoreline(t *testing.T) {
	r := NewResolver(3, rng.NewSeeded(5))
	for i := 0; i < 2000; i++ {
		out := r.Decide(55, 45)
		winner, loser := out.GoalsA, out.GoalsB
		if out.Winner == model.SideB {
			winner, loser = out.GoalsB, out.GoalsA
		}
		assert.GreaterOrEqual(t, winner, 2)
		assert.LessOrEqual(t, winner, 5)
		assert.GreaterOrEqual(t, loser, 0)
		assert.Less(t, loser, winner)
	}
}

func TestDecide_Scripted(t *testing.T) {
	// roll = 0.69 * 100 < 70，A 胜；进球 2+3=5，失球 4%5=4
	r := NewResolver(3, rng.NewScripted([]float64{0.69}, []int{3, 4}))
	out := r.Decide(70, 30)
	assert.Equal(t, model.SideA, out.Winner)
	assert.Equal(t, 5, out.GoalsA)
	assert.Equal(t, 4, out.GoalsB)

	r = NewResolver(3, rng.NewScripted([]float64{0.75}, []int{0, 0}))
	out = r.Decide(70, 30)
	assert.Equal(t, model.SideB, out.Winner)
	assert.Equal(t, 2, out.GoalsB)
	assert.Equal(t, 0, out.GoalsA)
}
