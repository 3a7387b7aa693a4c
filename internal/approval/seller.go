package approval

import (
	"strings"
	"time"
)

// ShopStatus 卖家店铺状态
type ShopStatus string

// 店铺状态常量
const (
	ShopStatusPending   ShopStatus = "pending"
	ShopStatusActive    ShopStatus = "active"
	ShopStatusSuspended ShopStatus = "suspended"
)

// ParseShopStatus 解析店铺状态
func ParseShopStatus(raw string) (ShopStatus, error) {
	value := ShopStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case ShopStatusPending, ShopStatusActive, ShopStatusSuspended:
		return value, nil
	default:
		return "", &InvalidStatusError{Kind: "shop", Value: raw}
	}
}

// UserRole 用户角色
type UserRole string

// 用户角色常量
const (
	RoleBuyer             UserRole = "buyer"
	RoleProspectiveSeller UserRole = "prospective_seller"
	RoleSeller            UserRole = "seller"
)

// PromoteOnOnboarding 完成入驻时的角色晋升：prospective_seller -> seller
func PromoteOnOnboarding(role UserRole) (UserRole, bool) {
	if role == RoleProspectiveSeller {
		return RoleSeller, true
	}
	return role, false
}

// ShopState 店铺可见性相关字段
type ShopState struct {
	Status              ShopStatus
	OnboardingCompleted bool
}

// StatusNote 状态变更审计记录，写入后不可修改
type StatusNote struct {
	Status    ShopStatus
	Note      string
	ChangedBy uint
	CreatedAt time.Time
}

// ShopEngine 店铺状态机
type ShopEngine struct {
	// ReactivateSuspended 为 true 时，完成入驻会把 suspended 店铺重新激活
	ReactivateSuspended bool
}

// NewShopState 懒创建的店铺初始状态
func NewShopState() ShopState {
	return ShopState{Status: ShopStatusPending}
}

// SetStatus 管理员设置店铺状态。无论状态是否变化都会生成一条备注记录。
func (e ShopEngine) SetStatus(s ShopState, status ShopStatus, note string, actorID uint, now time.Time) (ShopState, StatusNote, error) {
	parsed, err := ParseShopStatus(string(status))
	if err != nil {
		return s, StatusNote{}, err
	}
	s.Status = parsed
	return s, StatusNote{
		Status:    parsed,
		Note:      note,
		ChangedBy: actorID,
		CreatedAt: now,
	}, nil
}

// CompleteOnboarding 标记入驻完成并激活店铺；suspended 店铺仅在策略允许时被激活
func (e ShopEngine) CompleteOnboarding(s ShopState) ShopState {
	s.OnboardingCompleted = true
	if s.Status == ShopStatusSuspended && !e.ReactivateSuspended {
		return s
	}
	s.Status = ShopStatusActive
	return s
}

// IsReachable 店铺是否对外可访问
func IsReachable(s ShopState) bool {
	return s.Status == ShopStatusActive
}

// NeedsActivation 已完成入驻或属主已是 seller，但店铺未激活
func (e ShopEngine) NeedsActivation(s ShopState, ownerRole UserRole) bool {
	if s.Status == ShopStatusActive {
		return false
	}
	if !s.OnboardingCompleted && ownerRole != RoleSeller {
		return false
	}
	if s.Status == ShopStatusSuspended && !e.ReactivateSuspended {
		return false
	}
	return true
}

// NeedsRolePromotion 店铺已完成入驻但属主仍是 prospective_seller
func NeedsRolePromotion(s ShopState, ownerRole UserRole) bool {
	return s.OnboardingCompleted && ownerRole == RoleProspectiveSeller
}
