package repository

import (
	"errors"
	"strings"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetBySlug(slug string) (*models.Product, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	UpdateApprovalFields(id uint, flags approval.ProductFlags) (int64, error)
	MarkApprovedVerified(id uint) (int64, error)
	ScanApprovalFields(afterID uint, limit int) ([]ProductApprovalRow, error)
	CountBySlug(slug string, excludeID uint) (int64, error)
	CountAll() (int64, error)
	Delete(id uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	var products []models.Product

	query := r.db.Model(&models.Product{})
	if filter.SellerID != 0 {
		query = query.Where("products.seller_id = ?", filter.SellerID)
	}
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		query = query.Where("products.status = ?", status)
	}
	if filter.PubliclyVisible {
		query = query.Where("products.approved = ? AND products.verified = ?", true, true)
	}
	if filter.ShopVisible {
		query = query.Where("products.status = ? AND products.approved = ?", string(approval.ProductStatusApproved), true)
	}
	query = applySearch(query, r.db, filter.Search, "products.slug", "products.title")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	if err := query.Order("products.created_at DESC, products.id DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetBySlug 根据 slug 获取商品
func (r *GormProductRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品内容字段，审核字段只通过 UpdateApprovalFields 写入
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Model(product).
		Select("slug", "title", "description", "price_amount", "price_currency", "min_order_qty").
		Updates(product).Error
}

// UpdateApprovalFields 单行原子更新 status/approved/verified
func (r *GormProductRepository) UpdateApprovalFields(id uint, flags approval.ProductFlags) (int64, error) {
	result := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   string(flags.Status),
			"approved": flags.Approved,
			"verified": flags.Verified,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// MarkApprovedVerified 修复 status=approved 但标记未同步的商品。
// 条件更新保证并发下状态已被改走的记录不会被误修复。
func (r *GormProductRepository) MarkApprovedVerified(id uint) (int64, error) {
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND status = ?", id, string(approval.ProductStatusApproved)).
		Updates(map[string]interface{}{
			"approved": true,
			"verified": true,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ScanApprovalFields 按主键游标分批读取审核字段
func (r *GormProductRepository) ScanApprovalFields(afterID uint, limit int) ([]ProductApprovalRow, error) {
	if limit <= 0 {
		return []ProductApprovalRow{}, nil
	}
	rows := make([]ProductApprovalRow, 0, limit)
	err := r.db.Model(&models.Product{}).
		Select("id", "seller_id", "status", "approved", "verified").
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountBySlug 统计 slug 数量
func (r *GormProductRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Unscoped().Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountAll 统计商品总数
func (r *GormProductRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete 删除商品（软删除）
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}
