package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/security"
	"github.com/lk2023060901/kickoff/pkg/web/errors"
)

const (
	// ClaimsKey Context 中存储 Claims 的 key
	ClaimsKey = "jwt_claims"
	// UserIDKey Context 中存储账号 ID 的 key
	UserIDKey = "user_id"
)

// Auth 校验 Bearer Token，将账号 ID 写入 gin.Context 与 request context
func Auth(m *security.JWTManager) gin.HandlerFunc {
	cfg := m.GetConfig()
	return func(c *gin.Context) {
		claims, err := m.ValidateToken(c.GetHeader(cfg.HeaderName))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    errors.CodeUnAuthorized,
				"message": err.Error(),
				"data":    nil,
			})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// GetUserID 读取 Auth 写入的账号 ID
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetClaims 读取 Auth 写入的 Claims
func GetClaims(c *gin.Context) (*security.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.Claims)
	return claims, ok
}
