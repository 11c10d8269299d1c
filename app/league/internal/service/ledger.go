package service

import (
	"context"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository"
	"github.com/lk2023060901/kickoff/app/league/internal/rules"
	"github.com/lk2023060901/kickoff/pkg/idgen"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// SideResult 结算后某一方的状态
type SideResult struct {
	Account     *model.Account `json:"account"`
	RatingDelta int            `json:"ratingDelta"`
	CashDelta   int64          `json:"cashDelta"`
	TierBefore  model.Tier     `json:"tierBefore"`
	// RewardGranted 本次结算是否新发放了奖励角色
	RewardGranted bool `json:"rewardGranted"`
}

// TierChanged 段位是否变化
func (r *SideResult) TierChanged() bool {
	return r.Account != nil && r.Account.Tier != r.TierBefore
}

// LedgerResult 一次结算的结果
type LedgerResult struct {
	MatchID int64
	Home    SideResult
	Away    SideResult
	// Record 已写入的对局历史
	Record *model.MatchRecord
}

// Ledger 将对局结果写入双方账号，必须在事务内调用
type Ledger struct {
	cfg    *rules.Config
	ids    idgen.Generator
	logger logger.Logger
}

// NewLedger 创建结算器
func NewLedger(cfg *rules.Config, ids idgen.Generator, l logger.Logger) *Ledger {
	return &Ledger{
		cfg:    cfg,
		ids:    ids,
		logger: l.Named("service.ledger"),
	}
}

// Apply 结算一场对局：平局只累加平局数，分出胜负时更新积分、战绩、货币与段位，
// 随后为达到阈值的一方发放奖励角色并写入对局历史
func (l *Ledger) Apply(ctx context.Context, tx repository.Tx, mode model.Mode, homeID, awayID int64, out *model.Outcome) (*LedgerResult, error) {
	home, away, err := l.lockPair(ctx, tx, homeID, awayID)
	if err != nil {
		return nil, err
	}

	res := &LedgerResult{
		Home: SideResult{TierBefore: home.Tier},
		Away: SideResult{TierBefore: away.Tier},
	}

	var homeDelta, awayDelta model.AccountDelta
	switch out.Winner {
	case model.Draw:
		homeDelta = model.AccountDelta{Draw: 1}
		awayDelta = model.AccountDelta{Draw: 1}
	case model.SideA:
		homeDelta = l.winnerDelta(mode, home)
		awayDelta = l.loserDelta(away)
	case model.SideB:
		homeDelta = l.loserDelta(home)
		awayDelta = l.winnerDelta(mode, away)
	default:
		return nil, gameerr.New(gameerr.KindInvalidArgument, "unknown winner %q", out.Winner)
	}

	if res.Home.Account, err = tx.UpdateAccount(ctx, home.UserID, homeDelta); err != nil {
		return nil, err
	}
	if res.Away.Account, err = tx.UpdateAccount(ctx, away.UserID, awayDelta); err != nil {
		return nil, err
	}
	res.Home.RatingDelta = res.Home.Account.RankPoint - home.RankPoint
	res.Away.RatingDelta = res.Away.Account.RankPoint - away.RankPoint
	res.Home.CashDelta = homeDelta.Cash
	res.Away.CashDelta = awayDelta.Cash

	if out.Winner != model.Draw {
		for _, side := range []*SideResult{&res.Home, &res.Away} {
			granted, err := l.ensureReward(ctx, tx, side.Account)
			if err != nil {
				return nil, err
			}
			side.RewardGranted = granted
		}
	}

	matchID, err := l.ids.NextID()
	if err != nil {
		return nil, err
	}
	res.MatchID = matchID

	rec := &model.MatchRecord{
		MatchID:         matchID,
		Mode:            mode,
		HomeUserID:      home.UserID,
		AwayUserID:      away.UserID,
		Winner:          out.Winner,
		HomeGoals:       out.GoalsA,
		AwayGoals:       out.GoalsB,
		HomeRatingDelta: res.Home.RatingDelta,
		AwayRatingDelta: res.Away.RatingDelta,
	}
	if err := tx.InsertMatchRecord(ctx, rec); err != nil {
		return nil, err
	}
	res.Record = rec

	return res, nil
}

// lockPair 按 user_id 升序加锁，避免并发结算互相等待
func (l *Ledger) lockPair(ctx context.Context, tx repository.Tx, homeID, awayID int64) (home, away *model.Account, err error) {
	first, second := homeID, awayID
	if second < first {
		first, second = second, first
	}

	a, err := tx.LockAccount(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := tx.LockAccount(ctx, second)
	if err != nil {
		return nil, nil, err
	}

	if a.UserID == homeID {
		return a, b, nil
	}
	return b, a, nil
}

func (l *Ledger) winnerDelta(mode model.Mode, a *model.Account) model.AccountDelta {
	d := model.AccountDelta{Win: 1, RankPoint: l.cfg.RankDelta}
	if mode == model.ModeRanked {
		d.Cash = l.cfg.RankedWinCash
	}
	tier := l.cfg.TierFor(a.RankPoint + d.RankPoint)
	d.Tier = &tier
	return d
}

func (l *Ledger) loserDelta(a *model.Account) model.AccountDelta {
	loss := min(l.cfg.RankDelta, a.RankPoint)
	d := model.AccountDelta{Lose: 1, RankPoint: -loss}
	tier := l.cfg.TierFor(a.RankPoint - loss)
	d.Tier = &tier
	return d
}

// ensureReward 积分达到阈值且尚未持有时发放奖励角色，已持有时不做任何修改
func (l *Ledger) ensureReward(ctx context.Context, tx repository.Tx, a *model.Account) (bool, error) {
	if a.RankPoint < l.cfg.RewardThreshold {
		return false, nil
	}

	reward, err := tx.FindCharacterByName(ctx, l.cfg.RewardCharacter)
	if err != nil {
		if gameerr.KindOf(err) == gameerr.KindNotFound {
			l.logger.WarnContext(ctx, "reward character missing from catalog", "name", l.cfg.RewardCharacter)
			return false, nil
		}
		return false, err
	}

	_, err = tx.FindOwnership(ctx, a.UserID, reward.CharacterID)
	switch {
	case err == nil:
		return false, nil
	case gameerr.KindOf(err) != gameerr.KindNotFound:
		return false, err
	}

	o := model.NewOwnership(a.UserID, reward.CharacterID)
	if err := tx.CreateOwnership(ctx, &o); err != nil {
		return false, err
	}
	l.logger.InfoContext(ctx, "reward character granted", "user_id", a.UserID, "character", reward.Name)
	return true, nil
}
