// Package service 实现管理端口令闸门：口令校验与管理令牌的签发验证。
// 这里没有用户体系，只有一道口令；令牌仅表示"已通过管理口令"。
package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MorseWayne/pet_catalog/internal/config"
)

// 管理令牌相关错误定义
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
)

// AdminClaims 管理令牌载荷
type AdminClaims struct {
	Scope string `json:"scope"` // 恒为 "admin"
	jwt.RegisteredClaims
}

// AdminService 定义管理闸门接口
type AdminService interface {
	// Login 校验管理口令，通过后签发管理令牌
	Login(password string) (token string, err error)
	// ValidateToken 验证管理令牌
	ValidateToken(token string) error
}

// adminService 实现 AdminService 接口
type adminService struct {
	cfg    *config.Config
	hash   []byte
	logger *zap.Logger
}

// NewAdminService 创建管理闸门实例。
// 优先使用配置中的 bcrypt 哈希；仅配置了明文口令时（开发环境），
// 启动时先哈希一次，登录路径上始终走恒定时间比较。
func NewAdminService(cfg *config.Config, logger *zap.Logger) (AdminService, error) {
	hash := []byte(cfg.Admin.PasswordHash)
	if len(hash) == 0 {
		h, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = h
		logger.Warn("using plaintext ADMIN_PASSWORD, set ADMIN_PASSWORD_HASH for prod")
	}
	return &adminService{cfg: cfg, hash: hash, logger: logger}, nil
}

// Login 校验口令并签发令牌
func (s *adminService) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	now := time.Now()
	claims := &AdminClaims{
		Scope: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Admin.TokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.cfg.App.Name,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Admin.TokenSecret))
	if err != nil {
		s.logger.Error("failed to sign admin token", zap.Error(err))
		return "", err
	}

	s.logger.Info("admin login", zap.Duration("token_ttl", s.cfg.Admin.TokenTTL))
	return signed, nil
}

// ValidateToken 验证令牌签名、有效期与作用域
func (s *adminService) ValidateToken(tokenString string) error {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.Admin.TokenSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	if !token.Valid || claims.Scope != "admin" {
		return ErrInvalidToken
	}
	return nil
}
