package repository

import (
	"strings"

	"github.com/marketgate/internal/models"

	"gorm.io/gorm"
)

// ReconcileRunRepository 修复运行记录数据访问接口
type ReconcileRunRepository interface {
	Create(run *models.ReconcileRun) error
	List(filter ReconcileRunListFilter) ([]models.ReconcileRun, int64, error)
}

// GormReconcileRunRepository GORM 实现
type GormReconcileRunRepository struct {
	db *gorm.DB
}

// NewReconcileRunRepository 创建修复运行记录仓库
func NewReconcileRunRepository(db *gorm.DB) *GormReconcileRunRepository {
	return &GormReconcileRunRepository{db: db}
}

// Create 写入运行记录
func (r *GormReconcileRunRepository) Create(run *models.ReconcileRun) error {
	return r.db.Create(run).Error
}

// List 运行记录列表，最近的在前
func (r *GormReconcileRunRepository) List(filter ReconcileRunListFilter) ([]models.ReconcileRun, int64, error) {
	query := r.db.Model(&models.ReconcileRun{})
	if trigger := strings.TrimSpace(filter.Trigger); trigger != "" {
		query = query.Where("trigger_source = ?", trigger)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	runs := make([]models.ReconcileRun, 0)
	if err := query.Order("id DESC").Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
