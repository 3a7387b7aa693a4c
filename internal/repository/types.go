package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page     int
	PageSize int
	SellerID uint
	Status   string
	Search   string

	// PubliclyVisible 仅返回 approved AND verified 的商品（公开市场）
	PubliclyVisible bool

	// ShopVisible 仅返回 status = approved AND approved 的商品（店铺公开页）
	ShopVisible bool
}

// SellerProfileListFilter 查询卖家列表的过滤条件
type SellerProfileListFilter struct {
	Page                int
	PageSize            int
	Status              string
	Search              string
	OnboardingCompleted *bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ReconcileRunListFilter 查询修复运行记录的过滤条件
type ReconcileRunListFilter struct {
	Page     int
	PageSize int
	Trigger  string
}

// AdminAuditLogListFilter 查询管理端审计日志的过滤条件
type AdminAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	Action          string
	TargetType      string
	TargetID        uint
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// ProductApprovalRow 批量扫描时读取的商品审核字段
type ProductApprovalRow struct {
	ID       uint
	SellerID uint
	Status   string
	Approved bool
	Verified bool
}

// ActivationCandidate 批量扫描时读取的店铺字段及属主角色
type ActivationCandidate struct {
	ProfileID           uint
	UserID              uint
	ShopSlug            string
	Status              string
	OnboardingCompleted bool
	OwnerRole           string
}
