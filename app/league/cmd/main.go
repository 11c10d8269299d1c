package main

import (
	"time"

	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/rules"
	"github.com/lk2023060901/kickoff/app/league/internal/service"
	"github.com/lk2023060901/kickoff/pkg/app"
	"github.com/lk2023060901/kickoff/pkg/config"
	"github.com/lk2023060901/kickoff/pkg/database/postgres"
	"github.com/lk2023060901/kickoff/pkg/database/redis"
	"github.com/lk2023060901/kickoff/pkg/idgen"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/mq/kafka"
	"github.com/lk2023060901/kickoff/pkg/security"
	"github.com/lk2023060901/kickoff/pkg/sentry"
	"github.com/lk2023060901/kickoff/pkg/web"
)

// Config 定义 League 服务的完整配置结构
type Config struct {
	Log logger.Config `mapstructure:"log"`

	// StopTimeout 优雅停止超时，0 表示使用默认值
	StopTimeout time.Duration `mapstructure:"stop_timeout"`

	// 存储
	Database postgres.Config `mapstructure:"database"`
	Redis    redis.Config    `mapstructure:"redis"`

	// Events 对局事件投递，未配置 broker 时不投递
	Events kafka.Config `mapstructure:"events"`

	// HTTP 服务
	Web web.Config         `mapstructure:"web"`
	JWT security.JWTConfig `mapstructure:"jwt"`

	// BcryptCost 密码哈希工作因子，0 表示使用默认值
	BcryptCost int `mapstructure:"bcrypt_cost"`

	Metrics metrics.Config `mapstructure:"metrics"`
	Sentry  sentry.Config  `mapstructure:"sentry"`

	// 玩法参数
	Rules rules.Config `mapstructure:"rules"`

	Leaderboard service.RankingConfig `mapstructure:"leaderboard"`
	Lock        service.LockConfig    `mapstructure:"lock"`
	IDGen       idgen.Config          `mapstructure:"idgen"`
}

func main() {
	var cfg Config

	// 1. 加载配置
	if err := app.LoadConfig(&cfg); err != nil {
		panic(err)
	}

	// 2. 初始化主日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		panic(err)
	}
	logger.SetDefault(l)
	if err := app.WatchConfig(reloadLogLevel(l)); err != nil {
		l.Warn("config watch disabled", "error", err)
	}

	// 3. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return
	}
	defer cleanup()

	// 4. 运行服务
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
	}
}

// reloadLogLevel 配置文件中 log.level 变化时调整日志等级，其余配置需重启生效
func reloadLogLevel(l *logger.BaseLogger) func(config.Manager) {
	return func(m config.Manager) {
		var lc logger.Config
		if err := m.UnmarshalKey("log", &lc); err != nil {
			l.Warn("failed to reload log config", "error", err)
			return
		}
		if lc.Level == "" || lc.Level == l.GetLevel() {
			return
		}
		l.SetLevel(lc.Level)
		l.Info("log level reloaded", "level", lc.Level)
	}
}
