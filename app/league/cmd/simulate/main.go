// simulate 估算两个队伍评分之间的胜率分布
//
//	simulate --score-a 312.5 --score-b 280 --trials 200000
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/lk2023060901/kickoff/app/league/internal/simulate"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

func main() {
	cfg := simulate.DefaultConfig()

	var scoreA, scoreB float64
	pflag.Float64Var(&scoreA, "score-a", 0, "team score of side A")
	pflag.Float64Var(&scoreB, "score-b", 0, "team score of side B")
	pflag.IntVarP(&cfg.Trials, "trials", "n", cfg.Trials, "number of matches to simulate")
	pflag.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "worker pool size")
	pflag.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "matches per pool task")
	pflag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "base seed, batch i uses seed+i")
	pflag.Parse()

	l, err := logger.New(logger.DefaultConfig())
	if err != nil {
		panic(err)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info("simulation started",
		"score_a", scoreA,
		"score_b", scoreB,
		"trials", cfg.Trials,
		"workers", cfg.Workers,
	)

	rep, err := simulate.Run(ctx, scoreA, scoreB, cfg)
	if err != nil {
		l.Error("simulation failed", "error", err)
		os.Exit(1)
	}

	l.Info("simulation finished",
		"win_rate_a", rep.WinRateA,
		"expected_a", rep.ExpectedA,
		"draws", rep.Draws,
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		l.Error("failed to write report", "error", err)
		os.Exit(1)
	}
}
