//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lk2023060901/kickoff/app/league/internal/dao"
	"github.com/lk2023060901/kickoff/app/league/internal/handler"
	"github.com/lk2023060901/kickoff/app/league/internal/repository"
	"github.com/lk2023060901/kickoff/app/league/internal/service"
	"github.com/lk2023060901/kickoff/pkg/app"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

func InitApp(cfg *Config, l logger.Logger) (app.Application, func(), error) {
	panic(wire.Build(
		// 1. 基础框架 (BaseApp)
		app.ProviderSet,
		provideAppOptions,

		// 2. 基础设施
		providePostgres,
		provideRedis,
		provideMetrics,
		provideSentry,
		provideWebServer,
		provideJWTManager,
		provideHasher,
		provideIDGenerator,
		provideRandom,

		// 3. 玩法参数
		provideRules,
		provideRankingConfig,

		// 4. 数据层
		dao.NewAccountDAO,
		dao.NewCharacterDAO,
		dao.NewOwnershipDAO,
		dao.NewMatchRecordDAO,
		repository.NewDAOs,
		repository.NewPostgresStore,
		provideLeaderboard,
		provideMatchEvents,

		// 5. 逻辑层
		provideLocker,
		provideResolver,
		service.NewMatchFinder,
		service.NewLedger,
		service.NewRankingService,
		service.NewMatchService,
		service.NewGachaService,
		service.NewEnhanceService,
		service.NewSellService,
		service.NewAccountService,

		// 6. 接口层
		provideRateLimiter,
		handler.NewAuthHandler,
		handler.NewGameHandler,
		handler.NewCharacterHandler,
		handler.NewAccountHandler,
		handler.NewRouter,

		// 7. 组装
		provideAppComponents,
		app.InitApp,
	))
}
