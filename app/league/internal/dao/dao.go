// Package dao 直接访问 PostgreSQL 与 Redis。
//
// DAO 方法都接收 postgres.Querier，既可以传连接池也可以传事务，
// 事务边界由 repository 层决定。
package dao

import (
	"time"

	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
)

const (
	tableAccounts      = "accounts"
	tableCharacters    = "characters"
	tableCharacterList = "character_lists"
	tableMatchRecords  = "match_records"
)

// observe 记录一次查询耗时，需配合命名返回值 err 在 defer 中调用
func observe(m *metrics.LeagueMetrics, op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.RecordDBQuery(op, err == nil, time.Since(start).Seconds())
}
