package service

import (
	"context"

	"github.com/lk2023060901/kickoff/app/league/internal/model"
)

// MatchEvents 对局结算提交后的事件出口
//
// 投递失败只记录日志，已提交的战绩不回滚
type MatchEvents interface {
	PublishMatch(ctx context.Context, rec *model.MatchRecord) error
}

// NopEvents 不投递任何事件
type NopEvents struct{}

func (NopEvents) PublishMatch(context.Context, *model.MatchRecord) error { return nil }
