package repository

import (
	"errors"
	"strings"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/models"

	"gorm.io/gorm"
)

// SellerProfileRepository 卖家店铺数据访问接口
type SellerProfileRepository interface {
	GetByID(id uint) (*models.SellerProfile, error)
	GetByUserID(userID uint) (*models.SellerProfile, error)
	GetByShopSlug(slug string) (*models.SellerProfile, error)
	List(filter SellerProfileListFilter) ([]models.SellerProfile, int64, error)
	Create(profile *models.SellerProfile) error
	Update(profile *models.SellerProfile) error
	UpdateState(profile *models.SellerProfile) error
	ActivateIfInactive(id uint, allowSuspended bool) (int64, error)
	AppendStatusNote(note *models.SellerStatusNote) error
	ListStatusNotes(profileID uint) ([]models.SellerStatusNote, error)
	ScanActivationCandidates(afterID uint, limit int) ([]ActivationCandidate, error)
	CountByShopSlug(slug string, excludeID uint) (int64, error)
	CountAll() (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) SellerProfileRepository
}

// GormSellerProfileRepository GORM 实现
type GormSellerProfileRepository struct {
	db *gorm.DB
}

// NewSellerProfileRepository 创建卖家店铺仓库
func NewSellerProfileRepository(db *gorm.DB) *GormSellerProfileRepository {
	return &GormSellerProfileRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSellerProfileRepository) WithTx(tx *gorm.DB) SellerProfileRepository {
	if tx == nil {
		return r
	}
	return &GormSellerProfileRepository{db: tx}
}

// Transaction 执行事务
func (r *GormSellerProfileRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func (r *GormSellerProfileRepository) first(query *gorm.DB) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := query.First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByID 根据 ID 获取店铺
func (r *GormSellerProfileRepository) GetByID(id uint) (*models.SellerProfile, error) {
	return r.first(r.db.Where("id = ?", id))
}

// GetByUserID 根据用户 ID 获取店铺
func (r *GormSellerProfileRepository) GetByUserID(userID uint) (*models.SellerProfile, error) {
	return r.first(r.db.Where("user_id = ?", userID))
}

// GetByShopSlug 根据店铺 slug 获取店铺
func (r *GormSellerProfileRepository) GetByShopSlug(slug string) (*models.SellerProfile, error) {
	return r.first(r.db.Where("shop_slug = ?", slug))
}

// List 店铺列表（后台）
func (r *GormSellerProfileRepository) List(filter SellerProfileListFilter) ([]models.SellerProfile, int64, error) {
	var profiles []models.SellerProfile

	query := r.db.Model(&models.SellerProfile{})
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.OnboardingCompleted != nil {
		query = query.Where("onboarding_completed = ?", *filter.OnboardingCompleted)
	}
	query = applySearch(query, r.db, filter.Search, "shop_name", "shop_slug")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Scopes(paginate(filter.Page, filter.PageSize))
	if err := query.Order("id DESC").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// Create 创建店铺
func (r *GormSellerProfileRepository) Create(profile *models.SellerProfile) error {
	return r.db.Create(profile).Error
}

// Update 更新卖家可编辑字段，状态字段只通过 UpdateState 写入
func (r *GormSellerProfileRepository) Update(profile *models.SellerProfile) error {
	return r.db.Model(profile).
		Select("shop_name", "shop_slug", "description", "shipping_policy", "payout_method", "payout_account").
		Updates(profile).Error
}

// UpdateState 单行更新 status/onboarding_completed/onboarding_completed_at（含零值）
func (r *GormSellerProfileRepository) UpdateState(profile *models.SellerProfile) error {
	if profile == nil || profile.ID == 0 {
		return errors.New("invalid seller profile")
	}
	return r.db.Model(&models.SellerProfile{ID: profile.ID}).
		Select("status", "onboarding_completed", "onboarding_completed_at").
		Updates(map[string]interface{}{
			"status":                  profile.Status,
			"onboarding_completed":    profile.OnboardingCompleted,
			"onboarding_completed_at": profile.OnboardingCompletedAt,
		}).Error
}

// ActivateIfInactive 条件激活店铺；allowSuspended 为 false 时不触碰 suspended 店铺
func (r *GormSellerProfileRepository) ActivateIfInactive(id uint, allowSuspended bool) (int64, error) {
	query := r.db.Model(&models.SellerProfile{}).
		Where("id = ? AND status <> ?", id, string(approval.ShopStatusActive))
	if !allowSuspended {
		query = query.Where("status <> ?", string(approval.ShopStatusSuspended))
	}
	result := query.Update("status", string(approval.ShopStatusActive))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// AppendStatusNote 追加状态备注
func (r *GormSellerProfileRepository) AppendStatusNote(note *models.SellerStatusNote) error {
	if note == nil {
		return nil
	}
	return r.db.Create(note).Error
}

// ListStatusNotes 按写入顺序返回状态备注
func (r *GormSellerProfileRepository) ListStatusNotes(profileID uint) ([]models.SellerStatusNote, error) {
	notes := make([]models.SellerStatusNote, 0)
	if err := r.db.Where("profile_id = ?", profileID).Order("id ASC").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// ScanActivationCandidates 按主键游标分批读取店铺状态及属主角色，属主已删除的店铺不参与
func (r *GormSellerProfileRepository) ScanActivationCandidates(afterID uint, limit int) ([]ActivationCandidate, error) {
	if limit <= 0 {
		return []ActivationCandidate{}, nil
	}
	rows := make([]ActivationCandidate, 0, limit)
	err := r.db.Table("seller_profiles AS sp").
		Select("sp.id AS profile_id, sp.user_id AS user_id, sp.shop_slug AS shop_slug, sp.status AS status, sp.onboarding_completed AS onboarding_completed, u.role AS owner_role").
		Joins("INNER JOIN users u ON u.id = sp.user_id AND u.deleted_at IS NULL").
		Where("sp.deleted_at IS NULL AND sp.id > ?", afterID).
		Order("sp.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByShopSlug 统计店铺 slug 数量（含软删除）
func (r *GormSellerProfileRepository) CountByShopSlug(slug string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Unscoped().Model(&models.SellerProfile{}).Where("shop_slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountAll 统计店铺总数
func (r *GormSellerProfileRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.Model(&models.SellerProfile{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
