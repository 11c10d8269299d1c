package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/service"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/web"
)

// AuthHandler 注册与登录
type AuthHandler struct {
	accounts *service.AccountService
	logger   logger.Logger
}

// NewAuthHandler 创建注册登录处理器
func NewAuthHandler(accounts *service.AccountService, l logger.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		logger:   l.Named("handler.auth"),
	}
}

// SignUpRequest 注册请求
type SignUpRequest struct {
	UserID          string `json:"userId" binding:"required,min=3,max=32"`
	UserName        string `json:"userName" binding:"required,min=1,max=32"`
	Password        string `json:"password" binding:"required,min=4,max=72"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// SignInRequest 登录请求
type SignInRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignInResponse 登录响应
type SignInResponse struct {
	Token   string         `json:"token"`
	Account *model.Account `json:"account"`
}

// Register 注册路由
func (h *AuthHandler) Register(r gin.IRouter) {
	r.POST("/sign-up", h.SignUp)
	r.POST("/sign-in", h.SignIn)
}

// SignUp 注册
// @Summary 注册账号
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "注册请求"
// @Success 200 {object} web.Response{data=model.Account}
// @Failure 400 {object} web.Response
// @Failure 409 {object} web.Response
// @Router /api/auth/sign-up [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !web.BindAndValidate(c, &req) {
		return
	}

	a, err := h.accounts.SignUp(c.Request.Context(), service.SignUpInput{
		LoginID:         req.UserID,
		UserName:        req.UserName,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	h.logger.Info("account signed up",
		"user_id", a.UserID,
		"login_id", a.LoginID,
	)
	web.Success(c, a)
}

// SignIn 登录
// @Summary 登录并获取 Token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "登录请求"
// @Success 200 {object} web.Response{data=SignInResponse}
// @Failure 401 {object} web.Response
// @Router /api/auth/sign-in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if !web.BindAndValidate(c, &req) {
		return
	}

	token, a, err := h.accounts.SignIn(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	h.logger.Info("account signed in", "user_id", a.UserID)
	web.Success(c, SignInResponse{Token: token, Account: a})
}
