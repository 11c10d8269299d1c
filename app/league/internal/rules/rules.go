// Package rules 汇总联赛玩法的全部可调参数。
package rules

import (
	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/pkg/config"
)

// 友谊赛结算策略
const (
	FriendlyRewardsNone   = "none"
	FriendlyRewardsLedger = "ledger"
)

// TierThresholds 各段位的积分上限（不含），积分达到 Diamond 上限即为 Challenger
type TierThresholds struct {
	Bronze  int `mapstructure:"bronze" validate:"gt=0"`
	Silver  int `mapstructure:"silver" validate:"gtfield=Bronze"`
	Gold    int `mapstructure:"gold" validate:"gtfield=Silver"`
	Diamond int `mapstructure:"diamond" validate:"gtfield=Gold"`
}

// Config 玩法参数
type Config struct {
	// 匹配
	RatingWindow  int `mapstructure:"rating_window" validate:"gte=0"`
	FormationSize int `mapstructure:"formation_size" validate:"gt=0"`

	// 结算
	RankDelta       int            `mapstructure:"rank_delta" validate:"gte=0"`
	RankedWinCash   int64          `mapstructure:"ranked_win_cash" validate:"gte=0"`
	FriendlyRewards string         `mapstructure:"friendly_rewards" validate:"oneof=none ledger"`
	RewardThreshold int            `mapstructure:"reward_threshold" validate:"gt=0"`
	RewardCharacter string         `mapstructure:"reward_character" validate:"required"`
	Tiers           TierThresholds `mapstructure:"tiers"`

	// 货币
	StartingCash int64 `mapstructure:"starting_cash" validate:"gte=0"`
	DrawCost     int64 `mapstructure:"draw_cost" validate:"gt=0"`
	SellPrice    int64 `mapstructure:"sell_price" validate:"gte=0"`

	// 强化
	MaxLevel         int     `mapstructure:"max_level" validate:"gt=0"`
	PityThreshold    int     `mapstructure:"pity_threshold" validate:"gt=0"`
	LevelSuccessStep float64 `mapstructure:"level_success_step" validate:"gte=0,lte=1"`
	// LevelStatBonus 每级强化带来的属性倍率加成，0 表示出场只按基础属性计算
	LevelStatBonus float64 `mapstructure:"level_stat_bonus" validate:"gte=0"`
}

// DefaultConfig 默认参数
func DefaultConfig() *Config {
	return &Config{
		RatingWindow:    50,
		FormationSize:   3,
		RankDelta:       10,
		RankedWinCash:   500,
		FriendlyRewards: FriendlyRewardsNone,
		RewardThreshold: 1000,
		RewardCharacter: "Golden Striker",
		Tiers: TierThresholds{
			Bronze:  400,
			Silver:  600,
			Gold:    800,
			Diamond: 1000,
		},
		StartingCash:     10000,
		DrawCost:         500,
		SellPrice:        1000,
		MaxLevel:         10,
		PityThreshold:    10,
		LevelSuccessStep: 0.1,
		LevelStatBonus:   0,
	}
}

// Load 将用户配置合并到默认值上并校验
func Load(cfg *Config) (*Config, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "merge rules config")
	}
	if err := config.NewValidator().Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// TierFor 积分对应的段位
func (c *Config) TierFor(rankPoint int) model.Tier {
	switch {
	case rankPoint < c.Tiers.Bronze:
		return model.TierBronze
	case rankPoint < c.Tiers.Silver:
		return model.TierSilver
	case rankPoint < c.Tiers.Gold:
		return model.TierGold
	case rankPoint < c.Tiers.Diamond:
		return model.TierDiamond
	default:
		return model.TierChallenger
	}
}

// SuccessRate 在当前等级强化成功的概率
func (c *Config) SuccessRate(level int) float64 {
	p := 1 - float64(level)*c.LevelSuccessStep
	if p < 0 {
		return 0
	}
	return p
}

// StatMultiplier 强化等级对应的属性倍率
func (c *Config) StatMultiplier(level int) float64 {
	return 1 + float64(level)*c.LevelStatBonus
}

// LedgerForFriendly 友谊赛是否写入战绩
func (c *Config) LedgerForFriendly() bool {
	return c.FriendlyRewards == FriendlyRewardsLedger
}
