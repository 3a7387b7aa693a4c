package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	TouchLastLogin(id uint, at time.Time) error
	UpdateRole(id uint, role approval.UserRole) error
	PromoteRole(id uint, from, to approval.UserRole) (int64, error)
	UpdateStatus(id uint, status string) (int64, error)
	List(filter UserListFilter) ([]models.User, int64, error)
	WithTx(tx *gorm.DB) UserRepository
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) UserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

func (r *GormUserRepository) first(query *gorm.DB) (*models.User, error) {
	var user models.User
	err := query.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 邮箱需调用方先归一化
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.first(r.db.Where("email = ?", email))
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	return r.first(r.db.Where("id = ?", id))
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// TouchLastLogin 只更新最后登录时间
func (r *GormUserRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// UpdateRole 单行更新角色
func (r *GormUserRepository) UpdateRole(id uint, role approval.UserRole) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("role", string(role)).Error
}

// PromoteRole 仅当当前角色为 from 时改为 to，返回受影响行数
func (r *GormUserRepository) PromoteRole(id uint, from, to approval.UserRole) (int64, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND role = ?", id, string(from)).
		Update("role", string(to))
	return result.RowsAffected, result.Error
}

// UpdateStatus 更新账号状态；禁用时递增 token 版本，已签发 token 随之失效
func (r *GormUserRepository) UpdateStatus(id uint, status string) (int64, error) {
	updates := map[string]interface{}{"status": status}
	if status == constants.UserStatusDisabled {
		updates["token_version"] = gorm.Expr("token_version + 1")
	}
	result := r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	return result.RowsAffected, result.Error
}

// List 用户列表，按 ID 倒序
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	query = applySearch(query, r.db, filter.Keyword, "email", "display_name", "company_name")
	if role := strings.TrimSpace(filter.Role); role != "" {
		query = query.Where("role = ?", role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := query.Scopes(paginate(filter.Page, filter.PageSize)).Order("id DESC").Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
