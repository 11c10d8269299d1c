// Package battle 根据双方阵容计算胜负。
//
// 结算是一次按队伍评分比例进行的随机判定，不做任何持久化。
package battle

import (
	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
)

// 权重以百分之一为单位，避免浮点累加导致同分判定不稳定
const (
	weightSpeed             = 10
	weightGoalDetermination = 20
	weightShootPower        = 15
	weightDefense           = 40
	weightStamina           = 20
	weightScale             = 100
)

// 比分范围，仅用于展示
const (
	winnerGoalsMin = 2
	winnerGoalsMax = 5
	drawGoalsMax   = 3
)

// Resolver 对局结算器
type Resolver struct {
	teamSize int
	rnd      rng.Source
}

// NewResolver 创建结算器，teamSize 为每队出场人数
func NewResolver(teamSize int, rnd rng.Source) *Resolver {
	return &Resolver{teamSize: teamSize, rnd: rnd}
}

// Score 单个角色的加权评分
func Score(s model.Stats) float64 {
	return float64(scoreUnits(s)) / weightScale
}

func scoreUnits(s model.Stats) int64 {
	return int64(s.Speed)*weightSpeed +
		int64(s.GoalDetermination)*weightGoalDetermination +
		int64(s.ShootPower)*weightShootPower +
		int64(s.Defense)*weightDefense +
		int64(s.Stamina)*weightStamina
}

// TeamScore 队伍评分，即全部成员评分之和
func TeamScore(team []model.Stats) float64 {
	var total int64
	for _, s := range team {
		total += scoreUnits(s)
	}
	return float64(total) / weightScale
}

// Resolve 结算一场对局，任一方人数不符时返回 InvalidTeamSize
func (r *Resolver) Resolve(teamA, teamB []model.Stats) (*model.Outcome, error) {
	if len(teamA) != r.teamSize {
		return nil, gameerr.New(gameerr.KindInvalidTeamSize,
			"home team has %d members, want %d", len(teamA), r.teamSize).WithData("side", model.SideA)
	}
	if len(teamB) != r.teamSize {
		return nil, gameerr.New(gameerr.KindInvalidTeamSize,
			"away team has %d members, want %d", len(teamB), r.teamSize).WithData("side", model.SideB)
	}

	out := r.Decide(TeamScore(teamA), TeamScore(teamB))
	return &out, nil
}

// Decide 按评分比例判定胜负并生成比分
//
// 评分相等（包括双方均为 0）直接判为平局
func (r *Resolver) Decide(scoreA, scoreB float64) model.Outcome {
	out := model.Outcome{ScoreA: scoreA, ScoreB: scoreB}

	if scoreA == scoreB {
		g := rng.IntRange(r.rnd, 0, drawGoalsMax)
		out.Winner, out.GoalsA, out.GoalsB = model.Draw, g, g
		return out
	}

	roll := r.rnd.Float64() * (scoreA + scoreB)
	winnerGoals := rng.IntRange(r.rnd, winnerGoalsMin, winnerGoalsMax)
	loserGoals := rng.IntRange(r.rnd, 0, min(winnerGoalsMax, winnerGoals)-1)

	if roll < scoreA {
		out.Winner, out.GoalsA, out.GoalsB = model.SideA, winnerGoals, loserGoals
	} else {
		out.Winner, out.GoalsA, out.GoalsB = model.SideB, loserGoals, winnerGoals
	}
	return out
}
