package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lk2023060901/kickoff/pkg/config"
	"github.com/lk2023060901/kickoff/pkg/metrics/system"
	webmetrics "github.com/lk2023060901/kickoff/pkg/web/metrics"
)

// Config 指标配置
type Config struct {
	// Namespace 指标命名空间
	Namespace string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
	// SystemSampleInterval 进程指标的最小采样间隔
	SystemSampleInterval time.Duration `mapstructure:"system_sample_interval" json:"system_sample_interval" yaml:"system_sample_interval"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace:            "league",
		SystemSampleInterval: 5 * time.Second,
	}
}

// LeagueMetrics 联赛服务指标
type LeagueMetrics struct {
	config *Config

	// 对局指标
	MatchesTotal *prometheus.CounterVec // 对局总数（按模式、结果）

	// 抽卡与强化
	DrawsTotal        prometheus.Counter     // 抽出的角色总数
	CashSpentTotal    prometheus.Counter     // 抽卡消耗的货币
	EnhanceTotal      *prometheus.CounterVec // 强化次数（按结果 success/failed/pity）
	RewardUnlockTotal prometheus.Counter     // 奖励角色发放次数

	// 业务拒绝
	RejectionsTotal *prometheus.CounterVec // 按错误类别

	// 数据库指标
	DBQueryTotal    *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec

	// 缓存指标
	CacheHitTotal  *prometheus.CounterVec
	CacheMissTotal *prometheus.CounterVec

	HTTP   *webmetrics.HTTPMetrics
	system *system.Collector
}

// New 创建联赛指标
func New(cfg *Config) (*LeagueMetrics, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge metrics config: %w", err)
	}

	sys, err := system.New(newCfg.Namespace, newCfg.SystemSampleInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create system collector: %w", err)
	}

	ns := newCfg.Namespace
	return &LeagueMetrics{
		config: newCfg,

		MatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "matches_total",
				Help:      "对局总数",
			},
			[]string{"mode", "winner"}, // mode: friendly/ranked, winner: A/B/Draw
		),

		DrawsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "gacha_draws_total",
			Help:      "抽卡获得的角色总数",
		}),
		CashSpentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "gacha_cash_spent_total",
			Help:      "抽卡消耗的货币总额",
		}),
		EnhanceTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "enhance_attempts_total",
				Help:      "强化尝试次数",
			},
			[]string{"result"},
		),
		RewardUnlockTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "reward_unlocks_total",
			Help:      "奖励角色发放次数",
		}),

		RejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "rejections_total",
				Help:      "被业务规则拒绝的请求数",
			},
			[]string{"kind"},
		),

		DBQueryTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "db_queries_total",
				Help:      "数据库查询总数",
			},
			[]string{"operation", "result"},
		),
		DBQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "db_query_duration_seconds",
				Help:      "数据库查询延迟（秒）",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"operation"},
		),

		CacheHitTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "cache_hits_total",
				Help:      "缓存命中总数",
			},
			[]string{"cache_type"},
		),
		CacheMissTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "cache_misses_total",
				Help:      "缓存未命中总数",
			},
			[]string{"cache_type"},
		),

		HTTP:   webmetrics.New(ns),
		system: sys,
	}, nil
}

// Register 注册指标到 Prometheus Registry
func (m *LeagueMetrics) Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.MatchesTotal,
		m.DrawsTotal,
		m.CashSpentTotal,
		m.EnhanceTotal,
		m.RewardUnlockTotal,
		m.RejectionsTotal,
		m.DBQueryTotal,
		m.DBQueryDuration,
		m.CacheHitTotal,
		m.CacheMissTotal,
		m.system,
	}

	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}

	return m.HTTP.Register(registerer)
}

// RecordMatch 记录一场对局
func (m *LeagueMetrics) RecordMatch(mode, winner string) {
	m.MatchesTotal.WithLabelValues(mode, winner).Inc()
}

// RecordDraw 记录一次抽卡
func (m *LeagueMetrics) RecordDraw(count int, cost int64) {
	m.DrawsTotal.Add(float64(count))
	m.CashSpentTotal.Add(float64(cost))
}

// RecordEnhance 记录一次强化，result: success/failed/pity
func (m *LeagueMetrics) RecordEnhance(result string) {
	m.EnhanceTotal.WithLabelValues(result).Inc()
}

// RecordRewardUnlock 记录奖励角色发放
func (m *LeagueMetrics) RecordRewardUnlock() {
	m.RewardUnlockTotal.Inc()
}

// RecordRejection 记录业务拒绝
func (m *LeagueMetrics) RecordRejection(kind string) {
	m.RejectionsTotal.WithLabelValues(kind).Inc()
}

// RecordDBQuery 记录数据库查询
func (m *LeagueMetrics) RecordDBQuery(operation string, success bool, duration float64) {
	result := "success"
	if !success {
		result = "failed"
	}
	m.DBQueryTotal.WithLabelValues(operation, result).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheHit 记录缓存命中
func (m *LeagueMetrics) RecordCacheHit(cacheType string) {
	m.CacheHitTotal.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *LeagueMetrics) RecordCacheMiss(cacheType string) {
	m.CacheMissTotal.WithLabelValues(cacheType).Inc()
}

// GetConfig 获取配置
func (m *LeagueMetrics) GetConfig() *Config {
	return m.config
}

// NewNop 测试使用，指标不注册到任何 Registry
func NewNop() *LeagueMetrics {
	m, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return m
}
