package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// Leaderboard 排行榜缓存
type Leaderboard interface {
	Upsert(ctx context.Context, accounts ...*model.Account) error
	Replace(ctx context.Context, accounts []*model.Account) error
	// Top 积分最高的 user_id，缓存为空时返回空切片
	Top(ctx context.Context, limit int) ([]int64, error)
}

// RankingConfig 排行榜配置
type RankingConfig struct {
	Key string `mapstructure:"key"`
	// ResyncSpec 全量重建的 cron 表达式，为空时不启动定时任务
	ResyncSpec   string        `mapstructure:"resync_spec"`
	DefaultLimit int           `mapstructure:"default_limit"`
	MaxLimit     int           `mapstructure:"max_limit"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// DefaultRankingConfig 默认排行榜配置
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		Key:          "league:ranking",
		ResyncSpec:   "@every 5m",
		DefaultLimit: 100,
		MaxLimit:     1000,
		Timeout:      30 * time.Second,
	}
}

// RankingService 排行榜，优先读 Redis，缓存缺失时回退到数据库
type RankingService struct {
	store  repository.Store
	board  Leaderboard
	cfg    *RankingConfig
	logger logger.Logger
}

// NewRankingService 创建排行榜服务，board 可以为 nil
func NewRankingService(store repository.Store, board Leaderboard, cfg *RankingConfig, l logger.Logger) *RankingService {
	return &RankingService{
		store:  store,
		board:  board,
		cfg:    cfg,
		logger: l.Named("service.ranking"),
	}
}

// Top 返回前 limit 名，limit 越界时按配置截断
func (s *RankingService) Top(ctx context.Context, limit int) ([]model.RankEntry, error) {
	switch {
	case limit <= 0:
		limit = s.cfg.DefaultLimit
	case s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit:
		limit = s.cfg.MaxLimit
	}

	accounts, err := s.fromBoard(ctx, limit)
	if err != nil || len(accounts) == 0 {
		if err != nil {
			s.logger.WarnContext(ctx, "leaderboard unavailable, falling back to database", "error", err)
		}
		accounts, err = s.store.ListTopAccounts(ctx, limit)
		if err != nil {
			return nil, finish(ctx, s.logger, nil, "list ranking", 0, err)
		}
	}

	entries := make([]model.RankEntry, 0, len(accounts))
	for i, a := range accounts {
		entries = append(entries, model.RankEntry{
			Rank:      i + 1,
			UserID:    a.UserID,
			UserName:  a.UserName,
			Tier:      a.Tier,
			RankPoint: a.RankPoint,
			WinCount:  a.WinCount,
			DrawCount: a.DrawCount,
			LoseCount: a.LoseCount,
		})
	}
	return entries, nil
}

func (s *RankingService) fromBoard(ctx context.Context, limit int) ([]*model.Account, error) {
	if s.board == nil {
		return nil, nil
	}
	ids, err := s.board.Top(ctx, limit)
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	accounts, err := s.store.ListAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.UserID] = a
	}

	ordered := make([]*model.Account, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

// Refresh 对局提交后更新缓存，失败只记日志，由定时重建兜底
func (s *RankingService) Refresh(ctx context.Context, accounts ...*model.Account) {
	if s.board == nil {
		return
	}
	if err := s.board.Upsert(ctx, accounts...); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh leaderboard", "error", err)
	}
}

// Resync 用数据库全量重建排行榜
func (s *RankingService) Resync(ctx context.Context) error {
	if s.board == nil {
		return nil
	}
	accounts, err := s.store.ListTopAccounts(ctx, 0)
	if err != nil {
		return err
	}
	if err := s.board.Replace(ctx, accounts); err != nil {
		return err
	}
	s.logger.Info("leaderboard rebuilt", "accounts", len(accounts))
	return nil
}

// Run 启动时重建一次并按 ResyncSpec 定时重建，ctx 取消时停止
func (s *RankingService) Run(ctx context.Context) error {
	if s.board == nil {
		<-ctx.Done()
		return nil
	}

	resync := func() {
		rctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
		if err := s.Resync(rctx); err != nil {
			s.logger.Error("failed to rebuild leaderboard", "error", err)
		}
	}
	resync()

	if s.cfg.ResyncSpec == "" {
		<-ctx.Done()
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.cfg.ResyncSpec, resync); err != nil {
		return err
	}
	c.Start()
	s.logger.Info("leaderboard resync scheduled", "spec", s.cfg.ResyncSpec)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
