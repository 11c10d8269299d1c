package model

import "time"

// Side 对局一方
type Side string

const (
	SideA Side = "A" // 发起方
	SideB Side = "B" // 对手
	Draw  Side = "Draw"
)

// Mode 对局模式
type Mode string

const (
	ModeFriendly Mode = "friendly"
	ModeRanked   Mode = "ranked"
)

// Outcome 一次对局的结果，比分仅用于展示
type Outcome struct {
	Winner Side    `json:"winner"`
	ScoreA float64 `json:"scoreA"`
	ScoreB float64 `json:"scoreB"`
	GoalsA int     `json:"goalsA"`
	GoalsB int     `json:"goalsB"`
}

// MatchRecord 对局历史
type MatchRecord struct {
	MatchID         int64     `db:"match_id" json:"matchId"`
	Mode            Mode      `db:"mode" json:"mode"`
	HomeUserID      int64     `db:"home_user_id" json:"homeUserId"`
	AwayUserID      int64     `db:"away_user_id" json:"awayUserId"`
	Winner          Side      `db:"winner" json:"winner"`
	HomeGoals       int       `db:"home_goals" json:"homeGoals"`
	AwayGoals       int       `db:"away_goals" json:"awayGoals"`
	HomeRatingDelta int       `db:"home_rating_delta" json:"homeRatingDelta"`
	AwayRatingDelta int       `db:"away_rating_delta" json:"awayRatingDelta"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}
