package service

import (
	"context"
	"math"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
	"github.com/lk2023060901/kickoff/app/league/internal/rules"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// DrawnCharacter 抽卡结果中的单个角色
type DrawnCharacter struct {
	CharacterID int64  `json:"characterId"`
	Name        string `json:"name"`
	model.Stats
	// Quantity 本次抽取后的持有数量
	Quantity int  `json:"quantity"`
	New      bool `json:"new"`
}

// GachaService 抽卡：扣款、等概率有放回采样、发放角色在同一事务中完成
type GachaService struct {
	store   repository.Store
	locker  Locker
	cfg     *rules.Config
	rnd     rng.Source
	metrics *metrics.LeagueMetrics
	logger  logger.Logger
}

// NewGachaService 创建抽卡服务
func NewGachaService(
	store repository.Store,
	locker Locker,
	cfg *rules.Config,
	rnd rng.Source,
	m *metrics.LeagueMetrics,
	l logger.Logger,
) *GachaService {
	return &GachaService{
		store:   store,
		locker:  locker,
		cfg:     cfg,
		rnd:     rnd,
		metrics: m,
		logger:  l.Named("service.gacha"),
	}
}

// Draw 抽取 count 个角色，按抽取顺序返回
func (s *GachaService) Draw(ctx context.Context, userID int64, count int) ([]DrawnCharacter, error) {
	var drawn []DrawnCharacter
	err := s.draw(ctx, userID, count, &drawn)
	if err != nil {
		return nil, finish(ctx, s.logger, s.metrics, "gacha draw", userID, err)
	}

	cost, _ := s.drawCost(count)
	s.metrics.RecordDraw(count, cost)
	s.logger.InfoContext(ctx, "gacha draw completed", "user_id", userID, "count", count, "cost", cost)
	return drawn, nil
}

func (s *GachaService) draw(ctx context.Context, userID int64, count int, out *[]DrawnCharacter) error {
	if count <= 0 {
		return gameerr.New(gameerr.KindInvalidDrawCount, "draw count must be positive, got %d", count)
	}
	cost, ok := s.drawCost(count)

	return s.locker.WithAccountLock(ctx, userID, func() error {
		return s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			account, err := tx.LockAccount(ctx, userID)
			if err != nil {
				return err
			}
			if !ok {
				return gameerr.New(gameerr.KindInsufficientFunds,
					"drawing %d characters costs more than any balance, you have %d", count, account.UserCash).
					WithData("available", account.UserCash)
			}
			if account.UserCash < cost {
				return gameerr.New(gameerr.KindInsufficientFunds,
					"drawing %d characters costs %d, you have %d", count, cost, account.UserCash).
					WithData("required", cost, "available", account.UserCash)
			}

			catalog, err := tx.ListAllCharacters(ctx)
			if err != nil {
				return err
			}
			if len(catalog) == 0 {
				return gameerr.New(gameerr.KindNoCatalogAvailable, "character catalog is empty")
			}

			if _, err := tx.UpdateAccount(ctx, userID, model.AccountDelta{Cash: -cost}); err != nil {
				return err
			}

			results := make([]DrawnCharacter, 0, count)
			for i := 0; i < count; i++ {
				c := catalog[s.rnd.IntN(len(catalog))]
				qty, created, err := grant(ctx, tx, userID, c.CharacterID)
				if err != nil {
					return err
				}
				results = append(results, DrawnCharacter{
					CharacterID: c.CharacterID,
					Name:        c.Name,
					Stats:       c.Stats,
					Quantity:    qty,
					New:         created,
				})
			}
			*out = results
			return nil
		})
	})
}

// drawCost count 次抽卡的总价，溢出 int64 时 ok 为 false
func (s *GachaService) drawCost(count int) (cost int64, ok bool) {
	if s.cfg.DrawCost > 0 && int64(count) > math.MaxInt64/s.cfg.DrawCost {
		return 0, false
	}
	return int64(count) * s.cfg.DrawCost, true
}

// grant 已持有则数量加一，否则新建持有记录，返回发放后的数量
func grant(ctx context.Context, tx repository.Tx, userID, characterID int64) (int, bool, error) {
	o, err := tx.LockOwnership(ctx, userID, characterID)
	switch {
	case err == nil:
		o.Quantity++
		if err := tx.UpdateOwnership(ctx, o); err != nil {
			return 0, false, err
		}
		return o.Quantity, false, nil
	case gameerr.KindOf(err) == gameerr.KindNotFound:
		n := model.NewOwnership(userID, characterID)
		if err := tx.CreateOwnership(ctx, &n); err != nil {
			return 0, false, err
		}
		return n.Quantity, true, nil
	default:
		return 0, false, err
	}
}
