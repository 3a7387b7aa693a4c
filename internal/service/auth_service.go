package service

import (
	"context"
	"time"

	"github.com/marketgate/internal/cache"
	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService 管理员认证服务
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, adminRepo: adminRepo}
}

// JWTClaims 管理员 JWT 声明
type JWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// GenerateJWT 为管理员签发 token
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	return signToken(s.cfg.JWT, &JWTClaims{
		AdminID:          admin.ID,
		Username:         admin.Username,
		TokenVersion:     admin.TokenVersion,
		RegisteredClaims: tokenWindow(s.cfg.JWT, time.Now()),
	})
}

// ParseJWT 解析管理员 token
func (s *AuthService) ParseJWT(raw string) (*JWTClaims, error) {
	return parseToken(s.cfg.JWT, raw, &JWTClaims{})
}

// GetAdminByID 获取管理员
func (s *AuthService) GetAdminByID(id uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(id)
	switch {
	case err != nil:
		return nil, err
	case admin == nil:
		return nil, ErrNotFound
	}
	return admin, nil
}

// Login 管理员登录
func (s *AuthService) Login(username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil || VerifyPassword(admin.PasswordHash, password) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	if err := s.adminRepo.TouchLastLogin(admin.ID, now); err != nil {
		return nil, "", time.Time{}, persistErr("update", "admin", admin.ID, err)
	}
	admin.LastLoginAt = &now
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))
	return admin, token, expiresAt, nil
}

// ChangePassword 修改管理员密码，同时让已签发的 token 失效
func (s *AuthService) ChangePassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.GetAdminByID(adminID)
	if err != nil {
		return err
	}
	if VerifyPassword(admin.PasswordHash, oldPassword) != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	version, err := s.adminRepo.RotatePassword(admin.ID, hash)
	if err != nil {
		return persistErr("update", "admin", admin.ID, err)
	}
	admin.PasswordHash = hash
	admin.TokenVersion = version
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))
	return nil
}
