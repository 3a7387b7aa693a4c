package models

import (
	"time"

	"github.com/marketgate/internal/approval"

	"gorm.io/gorm"
)

// SellerProfile 卖家店铺资料（与 User 一对一）
type SellerProfile struct {
	ID                    uint           `gorm:"primarykey" json:"id"`
	UserID                uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	ShopName              string         `gorm:"type:varchar(120);not null;default:''" json:"shop_name"`
	ShopSlug              string         `gorm:"type:varchar(120);uniqueIndex;not null" json:"shop_slug"`
	Description           string         `gorm:"type:text" json:"description"`
	ShippingPolicy        string         `gorm:"type:text" json:"shipping_policy"`
	PayoutMethod          string         `gorm:"type:varchar(32);not null;default:''" json:"payout_method"`
	PayoutAccount         string         `gorm:"type:varchar(255);not null;default:''" json:"-"`
	Status                string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	OnboardingCompleted   bool           `gorm:"not null;default:false;index" json:"onboarding_completed"`
	OnboardingCompletedAt *time.Time     `json:"onboarding_completed_at"`
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	StatusNotes []SellerStatusNote `gorm:"foreignKey:ProfileID" json:"status_notes,omitempty"`
}

// TableName 指定表名
func (SellerProfile) TableName() string {
	return "seller_profiles"
}

// State 读取店铺状态字段
func (p *SellerProfile) State() approval.ShopState {
	return approval.ShopState{
		Status:              approval.ShopStatus(p.Status),
		OnboardingCompleted: p.OnboardingCompleted,
	}
}

// SetState 写回店铺状态字段
func (p *SellerProfile) SetState(s approval.ShopState) {
	p.Status = string(s.Status)
	p.OnboardingCompleted = s.OnboardingCompleted
}

// SellerStatusNote 店铺状态备注（只追加，不修改）
type SellerStatusNote struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProfileID uint      `gorm:"index;not null" json:"profile_id"`
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	Note      string    `gorm:"type:text" json:"note"`
	ChangedBy uint      `gorm:"index;not null;default:0" json:"changed_by"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (SellerStatusNote) TableName() string {
	return "seller_status_notes"
}

// NewSellerStatusNote 从状态机备注构建记录
func NewSellerStatusNote(profileID uint, note approval.StatusNote) *SellerStatusNote {
	return &SellerStatusNote{
		ProfileID: profileID,
		Status:    string(note.Status),
		Note:      note.Note,
		ChangedBy: note.ChangedBy,
		CreatedAt: note.CreatedAt,
	}
}
