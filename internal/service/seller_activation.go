package service

import (
	"time"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"

	"gorm.io/gorm"
)

// SellerActivator 完成入驻：店铺激活与属主角色晋升作为一个整体写入。
// transaction 模式在一个数据库事务内完成；compensate 模式先写店铺再写角色，失败时回滚店铺。
type SellerActivator struct {
	profileRepo repository.SellerProfileRepository
	userRepo    repository.UserRepository
	engine      approval.ShopEngine
	mode        string
}

// NewSellerActivator 创建激活协调器
func NewSellerActivator(profileRepo repository.SellerProfileRepository, userRepo repository.UserRepository, engine approval.ShopEngine, mode string) *SellerActivator {
	if mode != constants.ActivationModeCompensate {
		mode = constants.ActivationModeTransaction
	}
	return &SellerActivator{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		engine:      engine,
		mode:        mode,
	}
}

// Mode 当前激活模式
func (a *SellerActivator) Mode() string {
	return a.mode
}

// ActivationResult 激活结果
type ActivationResult struct {
	Profile   *models.SellerProfile
	User      *models.User
	Activated bool
	Promoted  bool
}

// CompleteOnboarding 标记入驻完成、按策略激活店铺并晋升角色。
// 成功时 profile 与 user 会被原地更新。
func (a *SellerActivator) CompleteOnboarding(profile *models.SellerProfile, user *models.User, now time.Time) (*ActivationResult, error) {
	before := *profile
	next := a.engine.CompleteOnboarding(profile.State())
	nextRole, promote := approval.PromoteOnOnboarding(user.UserRole())

	updated := before
	updated.SetState(next)
	if updated.OnboardingCompletedAt == nil {
		completedAt := now
		updated.OnboardingCompletedAt = &completedAt
	}

	var err error
	if a.mode == constants.ActivationModeCompensate {
		err = a.writeCompensating(&before, &updated, user, nextRole, promote)
	} else {
		err = a.writeTransactional(&updated, user, nextRole, promote)
	}
	if err != nil {
		return nil, err
	}

	*profile = updated
	if promote {
		user.Role = string(nextRole)
	}
	result := &ActivationResult{
		Profile:   profile,
		User:      user,
		Activated: before.Status != profile.Status && approval.IsReachable(profile.State()),
		Promoted:  promote,
	}
	logger.Infow("seller_onboarding_completed",
		"profile_id", profile.ID,
		"user_id", user.ID,
		"status", profile.Status,
		"activated", result.Activated,
		"role_promoted", promote,
		"mode", a.mode,
	)
	return result, nil
}

func (a *SellerActivator) writeTransactional(updated *models.SellerProfile, user *models.User, role approval.UserRole, promote bool) error {
	return a.profileRepo.Transaction(func(tx *gorm.DB) error {
		if err := a.profileRepo.WithTx(tx).UpdateState(updated); err != nil {
			return persistErr("update_state", "seller_profile", updated.ID, err)
		}
		if !promote {
			return nil
		}
		if err := a.userRepo.WithTx(tx).UpdateRole(user.ID, role); err != nil {
			return persistErr("update_role", "user", user.ID, err)
		}
		return nil
	})
}

func (a *SellerActivator) writeCompensating(before, updated *models.SellerProfile, user *models.User, role approval.UserRole, promote bool) error {
	if err := a.profileRepo.UpdateState(updated); err != nil {
		return persistErr("update_state", "seller_profile", updated.ID, err)
	}
	if !promote {
		return nil
	}
	roleErr := a.userRepo.UpdateRole(user.ID, role)
	if roleErr == nil {
		return nil
	}

	partial := &PartialActivationError{
		ProfileID: updated.ID,
		UserID:    user.ID,
		Err:       persistErr("update_role", "user", user.ID, roleErr),
	}
	if revertErr := a.profileRepo.UpdateState(before); revertErr != nil {
		partial.ProfileActivated = true
		logger.Errorw("seller_activation_compensation_failed",
			"profile_id", updated.ID,
			"user_id", user.ID,
			"role_error", roleErr,
			"revert_error", revertErr,
		)
		return partial
	}
	logger.Warnw("seller_activation_compensated",
		"profile_id", updated.ID,
		"user_id", user.ID,
		"role_error", roleErr,
	)
	return partial
}
