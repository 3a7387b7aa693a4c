package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/marketgate/internal/models"
)

// authStateTTL 鉴权快照有效期，过期后中间件回源数据库
const authStateTTL = 10 * time.Minute

// UserAuthState 用户鉴权快照：状态、角色与 token 版本
type UserAuthState struct {
	UserID       uint   `json:"user_id"`
	Status       string `json:"status"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

// AdminAuthState 管理员鉴权快照
type AdminAuthState struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	IsSuper      bool   `json:"is_super"`
	UpdatedAt    int64  `json:"updated_at"`
}

func authStateKey(kind string, id uint) string {
	return fmt.Sprintf("auth:%s:%d", kind, id)
}

// BuildUserAuthState 从用户模型构建快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:       user.ID,
		Status:       user.Status,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

// BuildAdminAuthState 从管理员模型构建快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		UpdatedAt:    time.Now().Unix(),
	}
}

// GetUserAuthState 读取用户快照
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	return getJSON[UserAuthState](ctx, authStateKey("user", userID))
}

// SetUserAuthState 写入用户快照；角色变化（如入驻晋升）后也要调用
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return setJSON(ctx, authStateKey("user", state.UserID), state, authStateTTL)
}

// DelUserAuthState 删除用户快照
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return del(ctx, authStateKey("user", userID))
}

// GetAdminAuthState 读取管理员快照
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	return getJSON[AdminAuthState](ctx, authStateKey("admin", adminID))
}

// SetAdminAuthState 写入管理员快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return setJSON(ctx, authStateKey("admin", state.AdminID), state, authStateTTL)
}
