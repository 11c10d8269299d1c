package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/kickoff/app/league/internal/service"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/web"
)

// AccountHandler 余额、个人信息与排行榜
type AccountHandler struct {
	accounts *service.AccountService
	ranking  *service.RankingService
	logger   logger.Logger
}

// NewAccountHandler 创建账号处理器
func NewAccountHandler(accounts *service.AccountService, ranking *service.RankingService, l logger.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		ranking:  ranking,
		logger:   l.Named("handler.account"),
	}
}

// Register 注册路由
func (h *AccountHandler) Register(r gin.IRouter) {
	r.GET("/cash", h.Cash)
	r.GET("/me", h.Me)
	r.GET("/ranking", h.Ranking)
}

// Cash 当前余额
func (h *AccountHandler) Cash(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	cash, err := h.accounts.Cash(c.Request.Context(), userID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	web.Success(c, gin.H{"userCash": cash})
}

// Me 当前账号
func (h *AccountHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	a, err := h.accounts.Profile(c.Request.Context(), userID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	web.Success(c, a)
}

// Ranking 排行榜，limit 缺省或越界时按配置处理
// @Summary 积分排行榜
// @Tags ranking
// @Produce json
// @Param limit query int false "返回条数"
// @Success 200 {object} web.Response{data=[]model.RankEntry}
// @Router /api/ranking [get]
func (h *AccountHandler) Ranking(c *gin.Context) {
	limit := web.GetQueryInt(c, "limit", 0)
	h.logger.Debug("handling ranking request", "limit", limit)

	entries, err := h.ranking.Top(c.Request.Context(), limit)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	web.Success(c, gin.H{"ranking": entries})
}
