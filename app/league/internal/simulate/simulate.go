// Package simulate 离线估算两支队伍的胜率，用于调校角色属性与权重。
//
// 试验按批次分发到 ants 协程池，每个批次使用独立的固定种子随机源，
// 因此相同的参数总是得到相同的报告，与调度顺序无关。
package simulate

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/lk2023060901/kickoff/app/league/internal/battle"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
)

// Config 模拟参数
type Config struct {
	Trials    int    `mapstructure:"trials"`
	Workers   int    `mapstructure:"workers"`
	BatchSize int    `mapstructure:"batch_size"`
	Seed      uint64 `mapstructure:"seed"`
}

// DefaultConfig 默认参数
func DefaultConfig() *Config {
	return &Config{
		Trials:    100000,
		Workers:   8,
		BatchSize: 1000,
		Seed:      1,
	}
}

// Report 模拟结果
type Report struct {
	Trials int `json:"trials"`
	WinsA  int `json:"winsA"`
	WinsB  int `json:"winsB"`
	Draws  int `json:"draws"`

	// WinRateA 观测到的 A 方胜率，ExpectedA 为按评分比例计算的理论值
	WinRateA  float64 `json:"winRateA"`
	ExpectedA float64 `json:"expectedA"`

	// 净胜球（A - B）的均值与标准差
	GoalDiffMean   float64 `json:"goalDiffMean"`
	GoalDiffStdDev float64 `json:"goalDiffStdDev"`
}

type batchResult struct {
	winsA, winsB, draws int
}

// Run 对评分 scoreA 与 scoreB 进行 cfg.Trials 次独立判定
func Run(ctx context.Context, scoreA, scoreB float64, cfg *Config) (*Report, error) {
	if cfg.Trials <= 0 {
		return nil, errors.Newf("trials must be positive, got %d", cfg.Trials)
	}
	if scoreA < 0 || scoreB < 0 {
		return nil, errors.Newf("scores must not be negative, got %v and %v", scoreA, scoreB)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = cfg.Trials
	}
	workers := max(cfg.Workers, 1)

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	batches := (cfg.Trials + batchSize - 1) / batchSize
	results := make([]batchResult, batches)
	diffs := make([]float64, cfg.Trials)

	var wg sync.WaitGroup
	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		lo := b * batchSize
		hi := min(lo+batchSize, cfg.Trials)
		seed := cfg.Seed + uint64(b)
		idx := b

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[idx] = runBatch(scoreA, scoreB, rng.NewSeeded(seed), diffs[lo:hi])
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, errors.Wrapf(err, "submit batch %d", b)
		}
	}
	wg.Wait()

	rep := &Report{Trials: cfg.Trials}
	for _, r := range results {
		rep.WinsA += r.winsA
		rep.WinsB += r.winsB
		rep.Draws += r.draws
	}
	rep.WinRateA = float64(rep.WinsA) / float64(cfg.Trials)
	if total := scoreA + scoreB; total > 0 {
		rep.ExpectedA = scoreA / total
	}
	rep.GoalDiffMean, rep.GoalDiffStdDev = stat.MeanStdDev(diffs, nil)
	return rep, nil
}

func runBatch(scoreA, scoreB float64, src rng.Source, diffs []float64) batchResult {
	var r batchResult
	resolver := battle.NewResolver(0, src)
	for i := range diffs {
		out := resolver.Decide(scoreA, scoreB)
		switch out.Winner {
		case model.SideA:
			r.winsA++
		case model.SideB:
			r.winsB++
		default:
			r.draws++
		}
		diffs[i] = float64(out.GoalsA - out.GoalsB)
	}
	return r
}
