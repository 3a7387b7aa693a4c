package admin

import (
	"time"

	handlershared "github.com/marketgate/internal/http/handlers/shared"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminProfile 登录响应中的管理员信息
type AdminProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsSuper  bool   `json:"is_super"`
}

// TokenResponse 签发 token 的响应
type TokenResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expires_at"`
	User      *AdminProfile `json:"user,omitempty"`
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

var adminLoginErrors = []handlershared.MappedError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Msg: "invalid username or password"},
}

func newTokenResponse(token string, expiresAt time.Time, admin *models.Admin) TokenResponse {
	resp := TokenResponse{Token: token, ExpiresAt: expiresAt.Format(time.RFC3339)}
	if admin != nil {
		resp.User = &AdminProfile{ID: admin.ID, Username: admin.Username, IsSuper: admin.IsSuper}
	}
	return resp
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		handlershared.RespondMappedError(c, err, adminLoginErrors, "login failed")
		return
	}
	requestLog(c).Infow("admin_login_success", "admin_id", admin.ID)
	response.Success(c, newTokenResponse(token, expiresAt, admin))
}

// GetAdminMe 当前管理员及其角色、策略
func (h *Handler) GetAdminMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load roles", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load policies", err)
		return
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"username": currentUsername(c),
		"is_super": currentIsSuper(c),
		"roles":    roles,
		"policies": policies,
	})
}

// UpdateAdminPassword 修改密码。旧 token 全部失效，响应中返回新 token。
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err, "failed to change password")
		return
	}
	admin, err := h.AuthService.GetAdminByID(adminID)
	if err != nil {
		respondServiceError(c, err, "failed to reload admin")
		return
	}
	token, expiresAt, err := h.AuthService.GenerateJWT(admin)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to issue token", err)
		return
	}
	requestLog(c).Infow("admin_password_changed", "admin_id", adminID)
	response.Success(c, newTokenResponse(token, expiresAt, nil))
}
