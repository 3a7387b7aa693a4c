package service

import (
	"context"
	"strings"
	"time"

	"github.com/marketgate/internal/cache"
	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"
)

// AdminUserFilter 管理端用户列表过滤条件
type AdminUserFilter struct {
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// ListUsers 管理端用户列表
func (s *UserAuthService) ListUsers(filter AdminUserFilter) ([]models.User, int64, error) {
	status := strings.ToLower(strings.TrimSpace(filter.Status))
	if status != "" && !isUserStatus(status) {
		return nil, 0, ErrInvalidUserStatus
	}
	return s.userRepo.List(repository.UserListFilter{
		Page:        filter.Page,
		PageSize:    filter.PageSize,
		Keyword:     strings.TrimSpace(filter.Keyword),
		Role:        strings.TrimSpace(filter.Role),
		Status:      status,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
	})
}

// SetUserStatus 启用或禁用用户账号。禁用后该用户已签发的 token 全部失效。
func (s *UserAuthService) SetUserStatus(ctx context.Context, userID uint, status string) (*models.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !isUserStatus(status) {
		return nil, ErrInvalidUserStatus
	}
	affected, err := s.userRepo.UpdateStatus(userID, status)
	if err != nil {
		return nil, persistErr("update_status", "user", userID, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	if err := cache.DelUserAuthState(ctx, userID); err != nil {
		logger.Warnw("user_auth_state_evict_failed", "user_id", userID, "error", err)
	}
	logger.Infow("user_status_updated", "user_id", userID, "status", status)
	return s.GetUserByID(userID)
}

func isUserStatus(status string) bool {
	return status == constants.UserStatusActive || status == constants.UserStatusDisabled
}
