package service

import (
	"context"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
	"github.com/lk2023060901/kickoff/app/league/internal/rules"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// EnhanceResult 强化结果
type EnhanceResult struct {
	CharacterName string `json:"characterName"`
	Success       bool   `json:"success"`
	// Pity 本次成功是否由保底触发
	Pity     bool `json:"pity"`
	Level    int  `json:"level"`
	Ceiling  int  `json:"ceiling"`
	Quantity int  `json:"quantity"`
	Cost     int  `json:"cost"`
}

// EnhanceService 角色强化
//
// 每次尝试消耗与当前等级相同数量的同名角色，无论成败。
// 成功率为 1 - level*LevelSuccessStep；连续失败达到 PityThreshold 次后，下一次必定成功。
type EnhanceService struct {
	store   repository.Store
	locker  Locker
	cfg     *rules.Config
	rnd     rng.Source
	metrics *metrics.LeagueMetrics
	logger  logger.Logger
}

// NewEnhanceService 创建强化服务
func NewEnhanceService(
	store repository.Store,
	locker Locker,
	cfg *rules.Config,
	rnd rng.Source,
	m *metrics.LeagueMetrics,
	l logger.Logger,
) *EnhanceService {
	return &EnhanceService{
		store:   store,
		locker:  locker,
		cfg:     cfg,
		rnd:     rnd,
		metrics: m,
		logger:  l.Named("service.enhance"),
	}
}

// Enhance 对指定角色进行一次强化
func (s *EnhanceService) Enhance(ctx context.Context, userID int64, characterName string) (*EnhanceResult, error) {
	var res *EnhanceResult
	err := s.locker.WithAccountLock(ctx, userID, func() error {
		return s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			var err error
			res, err = s.attempt(ctx, tx, userID, characterName)
			return err
		})
	})
	if err != nil {
		return nil, finish(ctx, s.logger, s.metrics, "enhance", userID, err)
	}

	switch {
	case res.Pity:
		s.metrics.RecordEnhance("pity")
	case res.Success:
		s.metrics.RecordEnhance("success")
	default:
		s.metrics.RecordEnhance("failed")
	}
	s.logger.InfoContext(ctx, "enhance attempted",
		"user_id", userID,
		"character", characterName,
		"success", res.Success,
		"level", res.Level,
		"ceiling", res.Ceiling,
	)
	return res, nil
}

func (s *EnhanceService) attempt(ctx context.Context, tx repository.Tx, userID int64, name string) (*EnhanceResult, error) {
	if _, err := tx.GetAccount(ctx, userID); err != nil {
		return nil, err
	}
	character, err := tx.FindCharacterByName(ctx, name)
	if err != nil {
		return nil, err
	}
	o, err := tx.LockOwnership(ctx, userID, character.CharacterID)
	if err != nil {
		return nil, ownershipOrMissing(err, name)
	}

	if o.Level >= s.cfg.MaxLevel {
		return nil, gameerr.New(gameerr.KindMaxLevelReached, "%q is already at max level %d", name, s.cfg.MaxLevel)
	}
	required := o.Level + 1
	if o.Quantity < required {
		return nil, gameerr.New(gameerr.KindInsufficientMaterial,
			"enhancing %q at level %d requires %d copies, you have %d", name, o.Level, required, o.Quantity).
			WithData("required", required, "available", o.Quantity)
	}

	res := &EnhanceResult{CharacterName: name, Cost: o.Level}
	next := s.transition(*o)
	res.Success = next.Level > o.Level
	res.Pity = o.Ceiling >= s.cfg.PityThreshold
	res.Level, res.Ceiling, res.Quantity = next.Level, next.Ceiling, next.Quantity

	if err := tx.UpdateOwnership(ctx, &next); err != nil {
		return nil, err
	}
	return res, nil
}

// transition 计算一次强化后的持有记录，调用前已校验等级与材料
func (s *EnhanceService) transition(o model.Ownership) model.Ownership {
	o.Quantity -= o.Level

	success := o.Ceiling >= s.cfg.PityThreshold
	if !success {
		success = s.rnd.Float64() <= s.cfg.SuccessRate(o.Level)
	}

	if success {
		o.Level++
		o.Ceiling = 0
	} else {
		o.Ceiling++
	}
	return o
}
