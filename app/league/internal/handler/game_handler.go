package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/kickoff/app/league/internal/service"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/web"
	"github.com/lk2023060901/kickoff/pkg/web/errors"
)

const defaultHistoryLimit = 20

// GameHandler 友谊赛、排位赛与对局历史
type GameHandler struct {
	matches  *service.MatchService
	accounts *service.AccountService
	logger   logger.Logger
}

// NewGameHandler 创建对局处理器
func NewGameHandler(matches *service.MatchService, accounts *service.AccountService, l logger.Logger) *GameHandler {
	return &GameHandler{
		matches:  matches,
		accounts: accounts,
		logger:   l.Named("handler.game"),
	}
}

// Register 注册路由
func (h *GameHandler) Register(r gin.IRouter) {
	g := r.Group("/games")
	g.POST("/friendly/:opponentId", h.Friendly)
	g.POST("/ranked", h.Ranked)
	g.GET("/history", h.History)
}

// Friendly 友谊赛
// @Summary 与指定账号进行友谊赛
// @Tags games
// @Produce json
// @Param opponentId path int true "对手账号 ID"
// @Success 200 {object} web.Response{data=service.MatchResult}
// @Router /api/games/friendly/{opponentId} [post]
func (h *GameHandler) Friendly(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	opponentID, err := strconv.ParseInt(c.Param("opponentId"), 10, 64)
	if err != nil || opponentID <= 0 {
		web.Error(c, errors.CodeInvalidParams, "opponentId must be a positive integer", nil)
		return
	}

	h.logger.Debug("handling friendly match request",
		"user_id", userID,
		"opponent_id", opponentID,
	)

	res, err := h.matches.Friendly(c.Request.Context(), userID, opponentID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	h.logger.Info("friendly match response sent",
		"user_id", userID,
		"opponent_id", opponentID,
		"winner", res.Outcome.Winner,
	)
	web.Success(c, res)
}

// Ranked 排位赛
// @Summary 自动匹配对手进行排位赛
// @Tags games
// @Produce json
// @Success 200 {object} web.Response{data=service.MatchResult}
// @Router /api/games/ranked [post]
func (h *GameHandler) Ranked(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	h.logger.Debug("handling ranked match request", "user_id", userID)

	res, err := h.matches.Ranked(c.Request.Context(), userID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	h.logger.Info("ranked match response sent",
		"user_id", userID,
		"opponent_id", res.Opponent.UserID,
		"winner", res.Outcome.Winner,
		"rating_delta", res.RatingDelta,
	)
	web.Success(c, res)
}

// History 最近的对局记录
func (h *GameHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit := web.GetQueryInt(c, "limit", defaultHistoryLimit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := h.accounts.History(c.Request.Context(), userID, limit)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	web.Success(c, gin.H{"records": records})
}
