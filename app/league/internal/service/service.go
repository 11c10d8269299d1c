// Package service 实现匹配、对局结算、抽卡、强化等玩法。
package service

import (
	"context"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// finish 统一处理服务出口的错误：业务拒绝记 Warn 并计数，其余记 Error 并包装为存储错误
func finish(ctx context.Context, l logger.Logger, m *metrics.LeagueMetrics, op string, userID int64, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := gameerr.As(err); ok {
		l.WarnContext(ctx, op+" rejected", "user_id", userID, "kind", e.Kind.String(), "reason", e.Message)
		if m != nil {
			m.RecordRejection(e.Kind.String())
		}
		return err
	}
	l.ErrorContext(ctx, op+" failed", "user_id", userID, "error", err)
	return gameerr.Store(err, op)
}

// ownershipOrMissing 将持有记录的 NotFound 转为 OwnsNoCharacter
func ownershipOrMissing(err error, name string) error {
	if gameerr.KindOf(err) == gameerr.KindNotFound {
		return gameerr.New(gameerr.KindOwnsNoCharacter, "you do not own %q", name)
	}
	return err
}
