package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lk2023060901/kickoff/pkg/config"
)

// JWTConfig JWT 配置，仅支持 HMAC 系列算法
type JWTConfig struct {
	SecretKey   string        `mapstructure:"secret_key"`
	Algorithm   string        `mapstructure:"algorithm"` // HS256, HS384, HS512
	ExpiresIn   time.Duration `mapstructure:"expires_in"`
	Issuer      string        `mapstructure:"issuer"`
	TokenPrefix string        `mapstructure:"token_prefix"` // 默认 "Bearer "
	HeaderName  string        `mapstructure:"header_name"`  // 默认 "authorization"
}

// Claims 账号身份
type Claims struct {
	jwt.RegisteredClaims

	UserID   int64  `json:"uid"`
	UserName string `json:"username,omitempty"`
}

// defaultJWTConfig 未配置字段的默认值
func defaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		Algorithm:   "HS256",
		ExpiresIn:   24 * time.Hour,
		TokenPrefix: "Bearer ",
		HeaderName:  "authorization",
	}
}

// JWTManager 签发与校验 Token
type JWTManager struct {
	config *JWTConfig
	method jwt.SigningMethod
}

// NewJWTManager 创建 JWT 管理器
func NewJWTManager(cfg *JWTConfig) (*JWTManager, error) {
	merged, err := config.MergeConfig(defaultJWTConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if merged.SecretKey == "" {
		return nil, ErrSecretKeyEmpty
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(merged.Algorithm) {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: %s", ErrAlgorithmInvalid, merged.Algorithm)
	}

	return &JWTManager{config: merged, method: method}, nil
}

// GetConfig 返回合并后的配置
func (m *JWTManager) GetConfig() *JWTConfig {
	return m.config
}

// GenerateToken 为账号签发 Token
func (m *JWTManager) GenerateToken(userID int64, userName string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.ExpiresIn)),
		},
		UserID:   userID,
		UserName: userName,
	}
	return jwt.NewWithClaims(m.method, claims).SignedString([]byte(m.config.SecretKey))
}

// ValidateToken 校验 Token，允许携带前缀
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, m.config.TokenPrefix))
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != m.method.Alg() {
			return nil, ErrAlgorithmMismatch
		}
		return []byte(m.config.SecretKey), nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func wrapError(err error) error {
	switch {
	case errors.Is(err, ErrAlgorithmMismatch):
		return ErrAlgorithmMismatch
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}
