// Package handler 将联赛玩法暴露为 HTTP 接口。
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/security"
	"github.com/lk2023060901/kickoff/pkg/sentry"
	"github.com/lk2023060901/kickoff/pkg/web"
	"github.com/lk2023060901/kickoff/pkg/web/errors"
	"github.com/lk2023060901/kickoff/pkg/web/middleware"
)

// Router 挂载全部路由
type Router struct {
	auth      *AuthHandler
	game      *GameHandler
	character *CharacterHandler
	account   *AccountHandler
	jwt       *security.JWTManager
	limiter   *middleware.RateLimiter
	reporter  *sentry.Client
}

// NewRouter 创建路由，limiter 为 nil 时不限流，reporter 为 nil 时不上报故障
func NewRouter(
	auth *AuthHandler,
	game *GameHandler,
	character *CharacterHandler,
	account *AccountHandler,
	jwt *security.JWTManager,
	limiter *middleware.RateLimiter,
	reporter *sentry.Client,
) *Router {
	return &Router{
		auth:      auth,
		game:      game,
		character: character,
		account:   account,
		jwt:       jwt,
		limiter:   limiter,
		reporter:  reporter,
	}
}

// Mount 注册到 r，除注册与登录外的接口都需要 Bearer Token
func (rt *Router) Mount(r gin.IRouter) {
	api := r.Group("/api", sentry.GinMiddleware(rt.reporter))
	rt.auth.Register(api.Group("/auth"))

	private := api.Group("", middleware.Auth(rt.jwt))
	if rt.limiter != nil {
		private.Use(middleware.RateLimit(rt.limiter))
	}
	rt.game.Register(private)
	rt.character.Register(private)
	rt.account.Register(private)
}

// currentUser 读取 Auth 中间件写入的账号 ID
func currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		web.AbortWithError(c, errors.CodeUnAuthorized, "missing user identity")
	}
	return id, ok
}

// fail 业务错误返回对应的错误码与附加数据，其余错误统一为 50000 并交给故障上报
func fail(c *gin.Context, l logger.Logger, err error) {
	e, ok := gameerr.As(err)
	if !ok || e.Kind == gameerr.KindStoreFailure {
		l.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(),
			"error", err,
		)
		_ = c.Error(err)
		web.Error(c, errors.CodeInternalError, "internal server error", nil)
		return
	}
	l.DebugContext(c.Request.Context(), "request rejected",
		"path", c.FullPath(),
		"kind", e.Kind.String(),
	)
	var data any
	if len(e.Data) > 0 {
		data = e.Data
	}
	web.Error(c, e.Kind.Code(), e.Message, data)
}
