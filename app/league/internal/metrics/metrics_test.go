package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeagueMetrics_Register(t *testing.T) {
	m, err := New(&Config{Namespace: "test"})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	// 重复注册应报错
	assert.Error(t, m.Register(reg))
}

func TestLeagueMetrics_Record(t *testing.T) {
	m := NewNop()

	m.RecordMatch("ranked", "A")
	m.RecordMatch("ranked", "A")
	m.RecordDraw(3, 1500)
	m.RecordEnhance("pity")
	m.RecordDBQuery("select", false, 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MatchesTotal.WithLabelValues("ranked", "A")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DrawsTotal))
	assert.Equal(t, 1500.0, testutil.ToFloat64(m.CashSpentTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnhanceTotal.WithLabelValues("pity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryTotal.WithLabelValues("select", "failed")))
	assert.Equal(t, "league", m.GetConfig().Namespace)
}
