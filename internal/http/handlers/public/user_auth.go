package public

import (
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	CompanyName string `json:"company_name"`
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserAuthResponse 注册/登录响应
type UserAuthResponse struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	ExpiresAt string       `json:"expires_at"`
}

// UserRegister 注册买家账号
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		respondServiceError(c, err, "registration failed")
		return
	}
	response.Success(c, UserAuthResponse{
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "login failed")
		return
	}
	response.Success(c, UserAuthResponse{
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetCurrentUser 当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(userID)
	if err != nil {
		respondServiceError(c, err, "failed to load user")
		return
	}
	response.Success(c, user)
}

// ApplyToSell 买家申请成为卖家
func (h *Handler) ApplyToSell(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, profile, err := h.UserAuthService.ApplyToSell(userID)
	if err != nil {
		respondServiceError(c, err, "failed to apply as seller")
		return
	}
	requestLog(c).Infow("user_apply_to_sell", "user_id", userID, "profile_id", profile.ID)
	response.Success(c, gin.H{
		"user":    user,
		"profile": profile,
	})
}
