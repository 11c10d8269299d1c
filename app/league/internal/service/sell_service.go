package service

import (
	"context"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository"
	"github.com/lk2023060901/kickoff/app/league/internal/rules"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// SellResult 出售结果
type SellResult struct {
	CharacterName string `json:"characterName"`
	Sold          int    `json:"sold"`
	Remaining     int    `json:"remaining"`
	Earned        int64  `json:"earned"`
	UserCash      int64  `json:"userCash"`
}

// SellService 将持有角色换成货币
type SellService struct {
	store   repository.Store
	locker  Locker
	cfg     *rules.Config
	metrics *metrics.LeagueMetrics
	logger  logger.Logger
}

// NewSellService 创建出售服务
func NewSellService(store repository.Store, locker Locker, cfg *rules.Config, m *metrics.LeagueMetrics, l logger.Logger) *SellService {
	return &SellService{
		store:   store,
		locker:  locker,
		cfg:     cfg,
		metrics: m,
		logger:  l.Named("service.sell"),
	}
}

// Sell 出售 quantity 个指定角色，数量归零时删除持有记录
func (s *SellService) Sell(ctx context.Context, userID int64, name string, quantity int) (*SellResult, error) {
	if quantity <= 0 {
		err := gameerr.New(gameerr.KindInvalidSellQuantity, "sell quantity must be positive, got %d", quantity)
		return nil, finish(ctx, s.logger, s.metrics, "sell", userID, err)
	}

	var res *SellResult
	err := s.locker.WithAccountLock(ctx, userID, func() error {
		return s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			var err error
			res, err = s.sell(ctx, tx, userID, name, quantity)
			return err
		})
	})
	if err != nil {
		return nil, finish(ctx, s.logger, s.metrics, "sell", userID, err)
	}

	s.logger.InfoContext(ctx, "characters sold", "user_id", userID, "character", name, "quantity", quantity, "earned", res.Earned)
	return res, nil
}

func (s *SellService) sell(ctx context.Context, tx repository.Tx, userID int64, name string, quantity int) (*SellResult, error) {
	if _, err := tx.LockAccount(ctx, userID); err != nil {
		return nil, err
	}
	c, err := tx.FindCharacterByName(ctx, name)
	if err != nil {
		return nil, err
	}
	o, err := tx.LockOwnership(ctx, userID, c.CharacterID)
	if err != nil {
		return nil, ownershipOrMissing(err, name)
	}

	if o.Quantity < quantity {
		return nil, gameerr.New(gameerr.KindInvalidSellQuantity,
			"you own %d of %q, cannot sell %d", o.Quantity, name, quantity).
			WithData("requested", quantity, "available", o.Quantity)
	}
	remaining := o.Quantity - quantity
	if remaining == 0 && o.IsFormation {
		return nil, gameerr.New(gameerr.KindInvalidSellQuantity,
			"%q is in your formation, keep at least one", name)
	}

	earned := s.cfg.SellPrice * int64(quantity)
	a, err := tx.UpdateAccount(ctx, userID, model.AccountDelta{Cash: earned})
	if err != nil {
		return nil, err
	}

	if remaining == 0 {
		err = tx.DeleteOwnership(ctx, o.CharacterListID)
	} else {
		o.Quantity = remaining
		err = tx.UpdateOwnership(ctx, o)
	}
	if err != nil {
		return nil, err
	}

	return &SellResult{
		CharacterName: name,
		Sold:          quantity,
		Remaining:     remaining,
		Earned:        earned,
		UserCash:      a.UserCash,
	}, nil
}
