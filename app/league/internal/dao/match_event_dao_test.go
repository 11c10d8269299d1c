package dao

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/mq/kafka"
)

type captureWriter struct {
	msgs []segkafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestMatchEventDAO_PublishMatch(t *testing.T) {
	w := &captureWriter{}
	d := NewMatchEventDAO(kafka.NewProducerWithWriter(w, "league.matches", nil), logger.NewNoop(), metrics.NewNop())

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := d.PublishMatch(context.Background(), &model.MatchRecord{
		MatchID:         9001,
		Mode:            model.ModeRanked,
		HomeUserID:      1,
		AwayUserID:      2,
		Winner:          model.SideB,
		HomeGoals:       1,
		AwayGoals:       3,
		HomeRatingDelta: -10,
		AwayRatingDelta: 10,
		CreatedAt:       at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "9001", string(msg.Key))

	var ev MatchEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, int64(9001), ev.MatchID)
	assert.Equal(t, model.SideB, ev.Winner)
	assert.Equal(t, 10, ev.AwayRatingDelta)
	assert.True(t, at.Equal(ev.OccurredAt))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, EventMatchResolved, headers["event_type"])
	assert.Equal(t, "application/json", headers["content-type"])
}

func TestMatchEventDAO_PublishFailure(t *testing.T) {
	w := &captureWriter{err: errors.New("no leader")}
	d := NewMatchEventDAO(kafka.NewProducerWithWriter(w, "league.matches", nil), logger.NewNoop(), metrics.NewNop())

	err := d.PublishMatch(context.Background(), &model.MatchRecord{MatchID: 5})
	assert.ErrorContains(t, err, "publish match 5")
	assert.ErrorContains(t, err, "no leader")

	assert.NoError(t, d.PublishMatch(context.Background(), nil))
}
