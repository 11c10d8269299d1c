package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lk2023060901/kickoff/app/league/internal/battle"
	"github.com/lk2023060901/kickoff/app/league/internal/dao"
	"github.com/lk2023060901/kickoff/app/league/internal/handler"
	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
	"github.com/lk2023060901/kickoff/app/league/internal/rules"
	"github.com/lk2023060901/kickoff/app/league/internal/service"
	"github.com/lk2023060901/kickoff/pkg/app"
	"github.com/lk2023060901/kickoff/pkg/config"
	"github.com/lk2023060901/kickoff/pkg/crypto"
	"github.com/lk2023060901/kickoff/pkg/database/postgres"
	"github.com/lk2023060901/kickoff/pkg/database/redis"
	"github.com/lk2023060901/kickoff/pkg/idgen"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/mq/kafka"
	"github.com/lk2023060901/kickoff/pkg/security"
	"github.com/lk2023060901/kickoff/pkg/sentry"
	"github.com/lk2023060901/kickoff/pkg/web"
	"github.com/lk2023060901/kickoff/pkg/web/middleware"
)

func provideAppOptions(cfg *Config, l logger.Logger) []app.Option {
	opts := []app.Option{
		app.WithName(app.AppName),
		app.WithLogger(l),
	}
	if cfg.StopTimeout > 0 {
		opts = append(opts, app.WithStopTimeout(cfg.StopTimeout))
	}
	return opts
}

// providePostgres 提供数据库连接池
func providePostgres(cfg *Config) (*postgres.Client, func(), error) {
	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

// provideRedis 提供 Redis 客户端
func provideRedis(cfg *Config) (*redis.Client, func(), error) {
	rdb, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return rdb, func() { _ = rdb.Close() }, nil
}

// provideMetrics 创建指标并注册到独立的 Registry
func provideMetrics(cfg *Config) (*metrics.LeagueMetrics, *prometheus.Registry, error) {
	m, err := metrics.New(&cfg.Metrics)
	if err != nil {
		return nil, nil, err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if err := m.Register(reg); err != nil {
		return nil, nil, err
	}
	return m, reg, nil
}

// provideSentry 未配置 DSN 时返回 nil，即不上报
func provideSentry(cfg *Config, l logger.Logger) (*sentry.Client, func(), error) {
	if !cfg.Sentry.Enabled() {
		l.Info("sentry disabled, no dsn configured")
		return nil, func() {}, nil
	}
	c, err := sentry.New(&cfg.Sentry)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

func provideWebServer(cfg *Config, l logger.Logger, m *metrics.LeagueMetrics, reg *prometheus.Registry) *web.Server {
	return web.NewServer(&cfg.Web, l, m.HTTP, reg)
}

func provideJWTManager(cfg *Config) (*security.JWTManager, error) {
	return security.NewJWTManager(&cfg.JWT)
}

func provideHasher(cfg *Config) crypto.PasswordHasher {
	return crypto.NewBcryptHasher(crypto.WithCost(cfg.BcryptCost))
}

func provideRules(cfg *Config) (*rules.Config, error) {
	return rules.Load(&cfg.Rules)
}

func provideIDGenerator(cfg *Config) (idgen.Generator, error) {
	return idgen.NewSonyflake(&cfg.IDGen)
}

// provideRandom 全部玩法共用一个并发安全的随机源
func provideRandom() rng.Source {
	return rng.NewDefault()
}

func provideResolver(r *rules.Config, rnd rng.Source) *battle.Resolver {
	return battle.NewResolver(r.FormationSize, rnd)
}

func provideRankingConfig(cfg *Config) (*service.RankingConfig, error) {
	return config.MergeConfig(service.DefaultRankingConfig(), &cfg.Leaderboard)
}

func provideLeaderboard(rdb *redis.Client, rc *service.RankingConfig, l logger.Logger, m *metrics.LeagueMetrics) service.Leaderboard {
	return dao.NewLeaderboardDAO(rdb, rc.Key, l, m)
}

// provideMatchEvents 未配置 broker 时使用 NopEvents
func provideMatchEvents(cfg *Config, l logger.Logger, m *metrics.LeagueMetrics) (service.MatchEvents, func(), error) {
	if !cfg.Events.Enabled() {
		return service.NopEvents{}, func() {}, nil
	}
	p, err := kafka.NewProducer(&cfg.Events, l)
	if err != nil {
		return nil, nil, err
	}
	return dao.NewMatchEventDAO(p, l, m), func() { _ = p.Close() }, nil
}

// provideLocker 是否启用分布式锁以配置文件为准
func provideLocker(cfg *Config, rdb *redis.Client, l logger.Logger) (service.Locker, error) {
	def := service.DefaultLockConfig()
	def.Enabled = false
	lc, err := config.MergeConfig(def, &cfg.Lock)
	if err != nil {
		return nil, err
	}
	return service.NewLocker(lc, rdb, l), nil
}

// provideRateLimiter 未配置速率时不限流
func provideRateLimiter(cfg *Config) *middleware.RateLimiter {
	rl := cfg.Web.RateLimit
	if rl.RequestsPerSecond <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(rl.RequestsPerSecond, rl.Burst)
}

func provideAppComponents(
	srv *web.Server,
	router *handler.Router,
	ranking *service.RankingService,
) app.AppComponents {
	router.Mount(srv.Router())

	return app.AppComponents{
		Servers: []app.Server{
			srv,
			ranking, // 排行榜定时重建
		},
	}
}
