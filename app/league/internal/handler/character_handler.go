package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/kickoff/app/league/internal/service"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/web"
)

// CharacterHandler 抽卡、强化、出售、持有角色与阵容
type CharacterHandler struct {
	gacha    *service.GachaService
	enhance  *service.EnhanceService
	sell     *service.SellService
	accounts *service.AccountService
	logger   logger.Logger
}

// NewCharacterHandler 创建角色处理器
func NewCharacterHandler(
	gacha *service.GachaService,
	enhance *service.EnhanceService,
	sell *service.SellService,
	accounts *service.AccountService,
	l logger.Logger,
) *CharacterHandler {
	return &CharacterHandler{
		gacha:    gacha,
		enhance:  enhance,
		sell:     sell,
		accounts: accounts,
		logger:   l.Named("handler.character"),
	}
}

// DrawRequest 抽卡请求，数量的合法性由服务层判定
type DrawRequest struct {
	Count int `json:"count"`
}

// EnhanceRequest 强化请求
type EnhanceRequest struct {
	CharacterName string `json:"characterName" binding:"required,charname"`
}

// SellRequest 出售请求
type SellRequest struct {
	CharacterName string `json:"characterName" binding:"required,charname"`
	Quantity      int    `json:"quantity"`
}

// FormationRequest 阵容请求
type FormationRequest struct {
	CharacterNames []string `json:"characterNames" binding:"required,dive,charname"`
}

// Register 注册路由
func (h *CharacterHandler) Register(r gin.IRouter) {
	r.POST("/gacha/draw", h.Draw)

	ch := r.Group("/characters")
	ch.GET("/mine", h.Mine)
	ch.POST("/enhance", h.Enhance)
	ch.POST("/sell", h.Sell)

	r.PUT("/formation", h.SetFormation)
}

// Draw 抽卡
// @Summary 抽取角色
// @Tags gacha
// @Accept json
// @Produce json
// @Param request body DrawRequest true "抽卡数量"
// @Success 200 {object} web.Response{data=[]service.DrawnCharacter}
// @Router /api/gacha/draw [post]
func (h *CharacterHandler) Draw(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req DrawRequest
	if !web.BindAndValidate(c, &req) {
		return
	}

	h.logger.Debug("handling gacha draw request",
		"user_id", userID,
		"count", req.Count,
	)

	drawn, err := h.gacha.Draw(c.Request.Context(), userID, req.Count)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	h.logger.Info("gacha draw response sent",
		"user_id", userID,
		"count", len(drawn),
	)
	web.Success(c, gin.H{"drawnCharacters": drawn})
}

// Enhance 强化
// @Summary 强化持有的角色
// @Tags characters
// @Accept json
// @Produce json
// @Param request body EnhanceRequest true "角色名"
// @Success 200 {object} web.Response{data=service.EnhanceResult}
// @Router /api/characters/enhance [post]
func (h *CharacterHandler) Enhance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req EnhanceRequest
	if !web.BindAndValidate(c, &req) {
		return
	}

	res, err := h.enhance.Enhance(c.Request.Context(), userID, req.CharacterName)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	h.logger.Info("enhance response sent",
		"user_id", userID,
		"character", req.CharacterName,
		"success", res.Success,
		"level", res.Level,
	)
	web.Success(c, res)
}

// Sell 出售
func (h *CharacterHandler) Sell(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req SellRequest
	if !web.BindAndValidate(c, &req) {
		return
	}

	res, err := h.sell.Sell(c.Request.Context(), userID, req.CharacterName, req.Quantity)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	h.logger.Info("sell response sent",
		"user_id", userID,
		"character", req.CharacterName,
		"quantity", req.Quantity,
	)
	web.Success(c, res)
}

// Mine 持有的全部角色
func (h *CharacterHandler) Mine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entries, err := h.accounts.Roster(c.Request.Context(), userID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	web.Success(c, gin.H{"characters": entries})
}

// SetFormation 替换阵容
func (h *CharacterHandler) SetFormation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req FormationRequest
	if !web.BindAndValidate(c, &req) {
		return
	}

	members, err := h.accounts.SetFormation(c.Request.Context(), userID, req.CharacterNames)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	h.logger.Info("formation updated", "user_id", userID, "members", req.CharacterNames)
	web.Success(c, gin.H{"formation": members})
}
