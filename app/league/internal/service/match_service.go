package service

import (
	"context"
	"fmt"

	"github.com/elliotchance/pie/v2"

	"github.com/lk2023060901/kickoff/app/league/internal/battle"
	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
	"github.com/lk2023060901/kickoff/app/league/internal/rules"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// MatchFinder 按积分接近程度挑选对手，读取不加锁
type MatchFinder struct {
	store  repository.Store
	cfg    *rules.Config
	rnd    rng.Source
	logger logger.Logger
}

// NewMatchFinder 创建匹配器
func NewMatchFinder(store repository.Store, cfg *rules.Config, rnd rng.Source, l logger.Logger) *MatchFinder {
	return &MatchFinder{
		store:  store,
		cfg:    cfg,
		rnd:    rnd,
		logger: l.Named("service.matchfinder"),
	}
}

// FindOpponent 在 ±RatingWindow 内随机挑选；窗口内无人时取积分低于自己的最高者，
// 仍无人时取积分高于自己的最低者
func (f *MatchFinder) FindOpponent(ctx context.Context, requesterID int64) (*model.Account, error) {
	me, err := f.store.GetAccount(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	others, err := f.store.ListAccounts(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return pickOpponent(me.RankPoint, others, f.cfg.RatingWindow, f.rnd)
}

func pickOpponent(r int, others []*model.Account, window int, rnd rng.Source) (*model.Account, error) {
	if len(others) == 0 {
		return nil, gameerr.New(gameerr.KindNoOpponentAvailable, "no other accounts to match against")
	}

	pool := pie.Filter(others, func(a *model.Account) bool {
		return a.RankPoint >= r-window && a.RankPoint <= r+window
	})
	if len(pool) > 0 {
		return pool[rnd.IntN(len(pool))], nil
	}

	var below, above *model.Account
	for _, a := range others {
		switch {
		case a.RankPoint < r:
			if below == nil || closerBelow(a, below) {
				below = a
			}
		case a.RankPoint > r:
			if above == nil || closerAbove(a, above) {
				above = a
			}
		}
	}
	if below != nil {
		return below, nil
	}
	if above != nil {
		return above, nil
	}
	return nil, gameerr.New(gameerr.KindNoOpponentAvailable, "no opponent near rating %d", r)
}

// 同分时取 user_id 较小者，保证结果稳定
func closerBelow(a, cur *model.Account) bool {
	return a.RankPoint > cur.RankPoint || (a.RankPoint == cur.RankPoint && a.UserID < cur.UserID)
}

func closerAbove(a, cur *model.Account) bool {
	return a.RankPoint < cur.RankPoint || (a.RankPoint == cur.RankPoint && a.UserID < cur.UserID)
}

// OpponentSummary 对手的公开信息
type OpponentSummary struct {
	UserID    int64      `json:"userId"`
	UserName  string     `json:"userName"`
	RankPoint int        `json:"rankPoint"`
	Tier      model.Tier `json:"tier"`
}

// MatchResult 对局结果
type MatchResult struct {
	Message     string          `json:"message"`
	Mode        model.Mode      `json:"mode"`
	Opponent    OpponentSummary `json:"opponent"`
	Outcome     model.Outcome   `json:"outcome"`
	MatchID     int64           `json:"matchId,omitempty"`
	Recorded    bool            `json:"recorded"`
	RatingDelta int             `json:"ratingDelta"`
	CashDelta   int64           `json:"cashDelta"`
	RankPoint   int             `json:"rankPoint"`
	Tier        model.Tier      `json:"tier,omitempty"`
	TierChanged bool            `json:"tierChanged"`
	Reward      bool            `json:"rewardGranted"`
}

// MatchService 友谊赛与排位赛
type MatchService struct {
	store    repository.Store
	finder   *MatchFinder
	resolver *battle.Resolver
	ledger   *Ledger
	ranking  *RankingService
	events   MatchEvents
	cfg      *rules.Config
	metrics  *metrics.LeagueMetrics
	logger   logger.Logger
}

// NewMatchService 创建对局服务
func NewMatchService(
	store repository.Store,
	finder *MatchFinder,
	resolver *battle.Resolver,
	ledger *Ledger,
	ranking *RankingService,
	events MatchEvents,
	cfg *rules.Config,
	m *metrics.LeagueMetrics,
	l logger.Logger,
) *MatchService {
	return &MatchService{
		store:    store,
		finder:   finder,
		resolver: resolver,
		ledger:   ledger,
		ranking:  ranking,
		events:   events,
		cfg:      cfg,
		metrics:  m,
		logger:   l.Named("service.match"),
	}
}

// Friendly 与指定对手进行友谊赛，默认只展示结果不写入战绩
func (s *MatchService) Friendly(ctx context.Context, userID, opponentID int64) (*MatchResult, error) {
	res, err := s.friendly(ctx, userID, opponentID)
	return res, finish(ctx, s.logger, s.metrics, "friendly match", userID, err)
}

func (s *MatchService) friendly(ctx context.Context, userID, opponentID int64) (*MatchResult, error) {
	if userID == opponentID {
		return nil, gameerr.New(gameerr.KindSelfMatchNotAllowed, "cannot play against yourself")
	}
	me, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	opponent, err := s.store.GetAccount(ctx, opponentID)
	if err != nil {
		return nil, err
	}
	return s.play(ctx, model.ModeFriendly, me, opponent, s.cfg.LedgerForFriendly())
}

// Ranked 自动匹配对手并进行排位赛
func (s *MatchService) Ranked(ctx context.Context, userID int64) (*MatchResult, error) {
	res, err := s.ranked(ctx, userID)
	return res, finish(ctx, s.logger, s.metrics, "ranked match", userID, err)
}

func (s *MatchService) ranked(ctx context.Context, userID int64) (*MatchResult, error) {
	me, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	opponent, err := s.finder.FindOpponent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.play(ctx, model.ModeRanked, me, opponent, true)
}

func (s *MatchService) play(ctx context.Context, mode model.Mode, me, opponent *model.Account, record bool) (*MatchResult, error) {
	teamA, err := s.buildTeam(ctx, me.UserID)
	if err != nil {
		return nil, err
	}
	teamB, err := s.buildTeam(ctx, opponent.UserID)
	if err != nil {
		return nil, err
	}

	out, err := s.resolver.Resolve(teamA, teamB)
	if err != nil {
		return nil, err
	}

	res := &MatchResult{
		Message: Headline(out),
		Mode:    mode,
		Opponent: OpponentSummary{
			UserID:    opponent.UserID,
			UserName:  opponent.UserName,
			RankPoint: opponent.RankPoint,
			Tier:      opponent.Tier,
		},
		Outcome:   *out,
		RankPoint: me.RankPoint,
		Tier:      me.Tier,
	}

	if record {
		var lr *LedgerResult
		err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			var err error
			lr, err = s.ledger.Apply(ctx, tx, mode, me.UserID, opponent.UserID, out)
			return err
		})
		if err != nil {
			return nil, err
		}

		res.Recorded = true
		res.MatchID = lr.MatchID
		res.RatingDelta = lr.Home.RatingDelta
		res.CashDelta = lr.Home.CashDelta
		res.RankPoint = lr.Home.Account.RankPoint
		res.Tier = lr.Home.Account.Tier
		res.TierChanged = lr.Home.TierChanged()
		res.Reward = lr.Home.RewardGranted

		for _, side := range []SideResult{lr.Home, lr.Away} {
			if side.RewardGranted {
				s.metrics.RecordRewardUnlock()
			}
		}
		if s.ranking != nil {
			s.ranking.Refresh(ctx, lr.Home.Account, lr.Away.Account)
		}
		if s.events != nil {
			if err := s.events.PublishMatch(ctx, lr.Record); err != nil {
				s.logger.WarnContext(ctx, "failed to publish match event", "match_id", lr.MatchID, "error", err)
			}
		}
	}

	s.metrics.RecordMatch(string(mode), string(out.Winner))
	s.logger.InfoContext(ctx, "match resolved",
		"mode", mode,
		"home", me.UserID,
		"away", opponent.UserID,
		"winner", out.Winner,
		"score_a", out.ScoreA,
		"score_b", out.ScoreB,
	)
	return res, nil
}

// buildTeam 读取出场角色的属性，启用强化加成时按等级放大
func (s *MatchService) buildTeam(ctx context.Context, userID int64) ([]model.Stats, error) {
	formation, err := s.store.ListFormation(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := pie.Map(formation, func(o *model.Ownership) int64 { return o.CharacterID })
	characters, err := s.store.FindCharactersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*model.Character, len(characters))
	for _, c := range characters {
		byID[c.CharacterID] = c
	}

	team := make([]model.Stats, 0, len(formation))
	for _, o := range formation {
		c, ok := byID[o.CharacterID]
		if !ok {
			s.logger.WarnContext(ctx, "formation references unknown character", "user_id", userID, "character_id", o.CharacterID)
			continue
		}
		stats := c.Stats
		if s.cfg.LevelStatBonus > 0 {
			stats = stats.Scale(s.cfg.StatMultiplier(o.Level))
		}
		team = append(team, stats)
	}
	return team, nil
}

// Headline 对局结果的展示文案
func Headline(out *model.Outcome) string {
	switch out.Winner {
	case model.SideA:
		return fmt.Sprintf("Team A wins: A %d - %d B", out.GoalsA, out.GoalsB)
	case model.SideB:
		return fmt.Sprintf("Team B wins: B %d - %d A", out.GoalsB, out.GoalsA)
	default:
		return fmt.Sprintf("Draw: A %d - %d B", out.GoalsA, out.GoalsB)
	}
}
