package service

import (
	"context"
	"strings"
	"time"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/cache"
	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"

	"gorm.io/gorm"
)

// SellerProfileService 卖家店铺服务
type SellerProfileService struct {
	profileRepo  repository.SellerProfileRepository
	userRepo     repository.UserRepository
	engine       approval.ShopEngine
	activator    *SellerActivator
	shopCacheTTL time.Duration
	now          func() time.Time
}

// NewSellerProfileService 创建卖家店铺服务
func NewSellerProfileService(profileRepo repository.SellerProfileRepository, userRepo repository.UserRepository, cfg config.ApprovalConfig) *SellerProfileService {
	engine := approval.ShopEngine{ReactivateSuspended: cfg.OnboardingReactivatesSuspended}
	return &SellerProfileService{
		profileRepo:  profileRepo,
		userRepo:     userRepo,
		engine:       engine,
		activator:    NewSellerActivator(profileRepo, userRepo, engine, cfg.ActivationMode),
		shopCacheTTL: time.Duration(cfg.ShopCacheTTLSeconds) * time.Second,
		now:          time.Now,
	}
}

// UpdateSellerProfileInput 卖家编辑店铺资料，nil 字段保持不变
type UpdateSellerProfileInput struct {
	ShopName           *string
	ShopSlug           *string
	Description        *string
	ShippingPolicy     *string
	PayoutMethod       *string
	PayoutAccount      *string
	CompleteOnboarding bool
}

// AdminSellerFilter 后台卖家列表条件
type AdminSellerFilter struct {
	Status              string
	Search              string
	OnboardingCompleted *bool
	Page                int
	PageSize            int
}

// Engine 返回当前店铺状态机（含暂停策略）
func (s *SellerProfileService) Engine() approval.ShopEngine {
	return s.engine
}

// GetOrCreate 获取卖家店铺资料，不存在时懒创建一个 pending 资料
func (s *SellerProfileService) GetOrCreate(userID uint) (*models.SellerProfile, error) {
	user, err := s.getSellerUser(userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	shopName := firstNonEmpty(user.CompanyName, user.DisplayName, nicknameFromEmail(user.Email))
	slug, err := uniqueSlug(shopName, "shop", func(candidate string) (bool, error) {
		count, err := s.profileRepo.CountByShopSlug(candidate, 0)
		return count > 0, err
	})
	if err != nil {
		return nil, err
	}
	profile = &models.SellerProfile{
		UserID:   user.ID,
		ShopName: strings.TrimSpace(shopName),
		ShopSlug: slug,
	}
	profile.SetState(approval.NewShopState())
	if err := s.profileRepo.Create(profile); err != nil {
		// 并发请求可能已创建
		existing, getErr := s.profileRepo.GetByUserID(user.ID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, persistErr("create", "seller_profile", 0, err)
	}
	logger.Infow("seller_profile_created", "profile_id", profile.ID, "user_id", user.ID, "shop_slug", profile.ShopSlug)
	return profile, nil
}

// UpdateProfile 卖家编辑店铺资料；CompleteOnboarding 为 true 时随后完成入驻
func (s *SellerProfileService) UpdateProfile(ctx context.Context, userID uint, input UpdateSellerProfileInput) (*models.SellerProfile, error) {
	profile, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	oldSlug := profile.ShopSlug

	if input.ShopName != nil {
		profile.ShopName = strings.TrimSpace(*input.ShopName)
	}
	if input.ShopSlug != nil {
		slug := slugify(*input.ShopSlug)
		if slug == "" {
			return nil, ErrShopSlugInvalid
		}
		if slug != profile.ShopSlug {
			count, err := s.profileRepo.CountByShopSlug(slug, profile.ID)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrShopSlugExists
			}
			profile.ShopSlug = slug
		}
	}
	if input.Description != nil {
		profile.Description = strings.TrimSpace(*input.Description)
	}
	if input.ShippingPolicy != nil {
		profile.ShippingPolicy = strings.TrimSpace(*input.ShippingPolicy)
	}
	if input.PayoutMethod != nil {
		profile.PayoutMethod = strings.TrimSpace(*input.PayoutMethod)
	}
	if input.PayoutAccount != nil {
		profile.PayoutAccount = strings.TrimSpace(*input.PayoutAccount)
	}

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, persistErr("update", "seller_profile", profile.ID, err)
	}
	s.invalidateShop(ctx, oldSlug, profile.ShopSlug)

	if input.CompleteOnboarding {
		return s.completeOnboarding(ctx, profile)
	}
	return profile, nil
}

// CompleteOnboarding 完成入驻：激活店铺（暂停中的店铺按策略处理）并晋升角色
func (s *SellerProfileService) CompleteOnboarding(ctx context.Context, userID uint) (*models.SellerProfile, error) {
	profile, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return s.completeOnboarding(ctx, profile)
}

func (s *SellerProfileService) completeOnboarding(ctx context.Context, profile *models.SellerProfile) (*models.SellerProfile, error) {
	if strings.TrimSpace(profile.ShopName) == "" ||
		strings.TrimSpace(profile.ShippingPolicy) == "" ||
		strings.TrimSpace(profile.PayoutMethod) == "" {
		return nil, ErrOnboardingIncomplete
	}
	user, err := s.getSellerUser(profile.UserID)
	if err != nil {
		return nil, err
	}
	result, err := s.activator.CompleteOnboarding(profile, user, s.now())
	s.invalidateShop(ctx, profile.ShopSlug)
	if err != nil {
		return nil, err
	}
	if result.Promoted {
		_ = cache.DelUserAuthState(ctx, user.ID)
	}
	return result.Profile, nil
}

// SetStatus 管理员设置店铺状态，并追加一条状态备注（状态未变化也追加）
func (s *SellerProfileService) SetStatus(ctx context.Context, userID uint, status, note string, adminID uint) (*models.SellerProfile, *models.SellerStatusNote, error) {
	parsed, err := approval.ParseShopStatus(status)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, nil, err
	}
	before := profile.State()
	next, entry, err := s.engine.SetStatus(before, parsed, strings.TrimSpace(note), adminID, s.now())
	if err != nil {
		return nil, nil, err
	}

	updated := *profile
	updated.SetState(next)
	record := models.NewSellerStatusNote(profile.ID, entry)
	err = s.profileRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.profileRepo.WithTx(tx)
		if err := repo.UpdateState(&updated); err != nil {
			return err
		}
		return repo.AppendStatusNote(record)
	})
	if err != nil {
		return nil, nil, persistErr("set_status", "seller_profile", profile.ID, err)
	}
	s.invalidateShop(ctx, profile.ShopSlug)

	*profile = updated
	logger.Infow("seller_status_changed",
		"profile_id", profile.ID,
		"user_id", profile.UserID,
		"admin_id", adminID,
		"from_status", before.Status,
		"to_status", next.Status,
	)
	return profile, record, nil
}

// GetPublicShop 店铺公开信息，仅 active 店铺可达；结果按 slug 缓存
func (s *SellerProfileService) GetPublicShop(ctx context.Context, slug string) (*cache.ShopSnapshot, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrNotFound
	}
	if snapshot, hit, err := cache.GetShopSnapshot(ctx, slug); err != nil {
		logger.Warnw("shop_cache_get_failed", "shop_slug", slug, "error", err)
	} else if hit && snapshot != nil {
		return snapshot, nil
	}

	profile, err := s.profileRepo.GetByShopSlug(slug)
	if err != nil {
		return nil, err
	}
	if profile == nil || !approval.IsReachable(profile.State()) {
		return nil, ErrNotFound
	}
	snapshot := &cache.ShopSnapshot{
		ProfileID:   profile.ID,
		UserID:      profile.UserID,
		ShopName:    profile.ShopName,
		ShopSlug:    profile.ShopSlug,
		Description: profile.Description,
		Status:      profile.Status,
	}
	if err := cache.SetShopSnapshot(ctx, snapshot, s.shopCacheTTL); err != nil {
		logger.Warnw("shop_cache_set_failed", "shop_slug", slug, "error", err)
	}
	return snapshot, nil
}

// ListStatusNotes 按时间顺序返回店铺状态备注
func (s *SellerProfileService) ListStatusNotes(userID uint) ([]models.SellerStatusNote, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}
	return s.profileRepo.ListStatusNotes(profile.ID)
}

// GetAdmin 后台查看店铺详情（含状态备注）
func (s *SellerProfileService) GetAdmin(userID uint) (*models.SellerProfile, error) {
	profile, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	notes, err := s.profileRepo.ListStatusNotes(profile.ID)
	if err != nil {
		return nil, err
	}
	profile.StatusNotes = notes
	return profile, nil
}

// ListAdmin 后台店铺列表
func (s *SellerProfileService) ListAdmin(filter AdminSellerFilter) ([]models.SellerProfile, int64, error) {
	status := strings.TrimSpace(filter.Status)
	if status != "" {
		parsed, err := approval.ParseShopStatus(status)
		if err != nil {
			return nil, 0, err
		}
		status = string(parsed)
	}
	return s.profileRepo.List(repository.SellerProfileListFilter{
		Page:                filter.Page,
		PageSize:            filter.PageSize,
		Status:              status,
		Search:              filter.Search,
		OnboardingCompleted: filter.OnboardingCompleted,
	})
}

func (s *SellerProfileService) getSellerUser(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	switch user.UserRole() {
	case approval.RoleSeller, approval.RoleProspectiveSeller:
		return user, nil
	default:
		return nil, ErrNotSeller
	}
}

func (s *SellerProfileService) invalidateShop(ctx context.Context, slugs ...string) {
	if err := cache.InvalidateShopSnapshot(ctx, slugs...); err != nil {
		logger.Warnw("shop_cache_invalidate_failed", "shop_slugs", slugs, "error", err)
	}
}
