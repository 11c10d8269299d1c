package model

import "time"

// Tier 段位，由积分唯一决定
type Tier string

const (
	TierBronze     Tier = "Bronze"
	TierSilver     Tier = "Silver"
	TierGold       Tier = "Gold"
	TierDiamond    Tier = "Diamond"
	TierChallenger Tier = "Challenger"
)

// Account 账号的积分、战绩与货币
type Account struct {
	UserID       int64     `db:"user_id" json:"userId"`
	LoginID      string    `db:"login_id" json:"loginId"`
	UserName     string    `db:"user_name" json:"userName"`
	PasswordHash string    `db:"password_hash" json:"-"`
	RankPoint    int       `db:"rank_point" json:"rankPoint"`
	WinCount     int       `db:"win_count" json:"winCount"`
	DrawCount    int       `db:"draw_count" json:"drawCount"`
	LoseCount    int       `db:"lose_count" json:"loseCount"`
	UserCash     int64     `db:"user_cash" json:"userCash"`
	Tier         Tier      `db:"tier" json:"tier"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

// AccountDelta 对账号的一次相对修改
//
// RankPoint 为负时按当前积分截断，结果不会小于 0；Tier 非空时直接覆盖
type AccountDelta struct {
	Win       int
	Draw      int
	Lose      int
	RankPoint int
	Cash      int64
	Tier      *Tier
}

// Apply 返回应用 delta 后的账号副本
func (a Account) Apply(d AccountDelta) Account {
	a.WinCount += d.Win
	a.DrawCount += d.Draw
	a.LoseCount += d.Lose
	a.RankPoint += d.RankPoint
	if a.RankPoint < 0 {
		a.RankPoint = 0
	}
	a.UserCash += d.Cash
	if d.Tier != nil {
		a.Tier = *d.Tier
	}
	return a
}

// RankEntry 排行榜条目
type RankEntry struct {
	Rank      int    `json:"rank"`
	UserID    int64  `json:"userId"`
	UserName  string `json:"userName"`
	Tier      Tier   `json:"tier"`
	RankPoint int    `json:"rankPoint"`
	WinCount  int    `json:"winCount"`
	DrawCount int    `json:"drawCount"`
	LoseCount int    `json:"loseCount"`
}
