package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/cache"
	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// UserAuthService 用户认证服务
type UserAuthService struct {
	cfg        *config.Config
	userRepo   repository.UserRepository
	profileSvc *SellerProfileService
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, profileSvc *SellerProfileService) *UserAuthService {
	return &UserAuthService{
		cfg:        cfg,
		userRepo:   userRepo,
		profileSvc: profileSvc,
	}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	CompanyName string
}

// GenerateUserJWT 为用户签发 token
func (s *UserAuthService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	return signToken(s.cfg.UserJWT, &UserJWTClaims{
		UserID:           user.ID,
		Email:            user.Email,
		TokenVersion:     user.TokenVersion,
		RegisteredClaims: tokenWindow(s.cfg.UserJWT, time.Now()),
	})
}

// ParseUserJWT 解析用户 token
func (s *UserAuthService) ParseUserJWT(raw string) (*UserJWTClaims, error) {
	return parseToken(s.cfg.UserJWT, raw, &UserJWTClaims{})
}

// Register 注册买家账号
func (s *UserAuthService) Register(input RegisterInput) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = nicknameFromEmail(normalized)
	}
	user := &models.User{
		Email:        normalized,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
		CompanyName:  strings.TrimSpace(input.CompanyName),
		Role:         string(approval.RoleBuyer),
		Status:       constants.UserStatusActive,
		LastLoginAt:  &now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", time.Time{}, persistErr("create", "user", 0, err)
	}

	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	logger.Infow("user_registered", "user_id", user.ID)
	return user, token, expiresAt, nil
}

// Login 用户登录
func (s *UserAuthService) Login(email, password string) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil || VerifyPassword(user.PasswordHash, password) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !strings.EqualFold(user.Status, constants.UserStatusActive) {
		return nil, "", time.Time{}, ErrUserDisabled
	}

	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		return nil, "", time.Time{}, persistErr("update", "user", user.ID, err)
	}
	user.LastLoginAt = &now
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, token, expiresAt, nil
}

// GetUserByID 获取用户
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	switch {
	case err != nil:
		return nil, err
	case user == nil:
		return nil, ErrNotFound
	}
	return user, nil
}

// ApplyToSell 买家申请成为卖家：角色变为 prospective_seller 并懒创建店铺资料。
// 已是 prospective_seller 时重复调用只返回现有资料。
func (s *UserAuthService) ApplyToSell(userID uint) (*models.User, *models.SellerProfile, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, nil, err
	}
	switch user.UserRole() {
	case approval.RoleSeller:
		return nil, nil, ErrAlreadySeller
	case approval.RoleBuyer, "":
		affected, err := s.userRepo.PromoteRole(user.ID, user.UserRole(), approval.RoleProspectiveSeller)
		if err != nil {
			return nil, nil, persistErr("update_role", "user", user.ID, err)
		}
		if affected == 0 {
			// 角色在读取后被并发修改
			return nil, nil, ErrAlreadySeller
		}
		user.Role = string(approval.RoleProspectiveSeller)
		_ = cache.DelUserAuthState(context.Background(), user.ID)
		logger.Infow("user_applied_to_sell", "user_id", user.ID)
	}

	profile, err := s.profileSvc.GetOrCreate(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func nicknameFromEmail(email string) string {
	if local, _, ok := strings.Cut(email, "@"); ok && strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return email
}
