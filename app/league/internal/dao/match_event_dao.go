package dao

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/mq/kafka"
)

// EventMatchResolved 对局结算事件类型
const EventMatchResolved = "match.resolved"

// MatchEvent 投递到 Kafka 的对局结算事件
type MatchEvent struct {
	MatchID         int64      `json:"matchId"`
	Mode            model.Mode `json:"mode"`
	HomeUserID      int64      `json:"homeUserId"`
	AwayUserID      int64      `json:"awayUserId"`
	Winner          model.Side `json:"winner"`
	HomeGoals       int        `json:"homeGoals"`
	AwayGoals       int        `json:"awayGoals"`
	HomeRatingDelta int        `json:"homeRatingDelta"`
	AwayRatingDelta int        `json:"awayRatingDelta"`
	OccurredAt      time.Time  `json:"occurredAt"`
}

// MatchEventDAO 以 match_id 为 key 投递对局事件，同一场对局落在同一分区
type MatchEventDAO struct {
	producer *kafka.Producer
	logger   logger.Logger
	metrics  *metrics.LeagueMetrics
}

// NewMatchEventDAO 创建对局事件 DAO
func NewMatchEventDAO(p *kafka.Producer, l logger.Logger, m *metrics.LeagueMetrics) *MatchEventDAO {
	return &MatchEventDAO{
		producer: p,
		logger:   l.Named("dao.match_event"),
		metrics:  m,
	}
}

// PublishMatch 投递一条已提交的对局记录
func (d *MatchEventDAO) PublishMatch(ctx context.Context, rec *model.MatchRecord) (err error) {
	if rec == nil {
		return nil
	}
	defer func(start time.Time) { observe(d.metrics, "publish", start, err) }(time.Now())

	occurred := rec.CreatedAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	body, err := json.Marshal(MatchEvent{
		MatchID:         rec.MatchID,
		Mode:            rec.Mode,
		HomeUserID:      rec.HomeUserID,
		AwayUserID:      rec.AwayUserID,
		Winner:          rec.Winner,
		HomeGoals:       rec.HomeGoals,
		AwayGoals:       rec.AwayGoals,
		HomeRatingDelta: rec.HomeRatingDelta,
		AwayRatingDelta: rec.AwayRatingDelta,
		OccurredAt:      occurred,
	})
	if err != nil {
		return errors.Wrap(err, "marshal match event")
	}

	key := strconv.FormatInt(rec.MatchID, 10)
	if err = d.producer.PublishJSON(ctx, key, body, map[string]string{"event_type": EventMatchResolved}); err != nil {
		return errors.Wrapf(err, "publish match %d", rec.MatchID)
	}
	d.logger.DebugContext(ctx, "match event published", "match_id", rec.MatchID, "topic", d.producer.Topic())
	return nil
}
