package models

import (
	"time"

	"github.com/marketgate/internal/approval"

	"gorm.io/gorm"
)

// Product 卖家商品表
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                            // 主键
	SellerID      uint           `gorm:"not null;index" json:"seller_id"`                                 // 所属卖家用户ID
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`                                // 唯一标识
	Title         string         `gorm:"type:varchar(200);not null" json:"title"`                         // 标题
	Description   string         `gorm:"type:text" json:"description"`                                    // 描述
	PriceAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`       // 单价
	PriceCurrency string         `gorm:"type:varchar(10);not null;default:'USD'" json:"price_currency"`   // 币种
	MinOrderQty   int            `gorm:"not null;default:1" json:"min_order_qty"`                         // 最小起订量
	Status        string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"` // 生命周期状态
	Approved      bool           `gorm:"not null;default:false;index" json:"approved"`                    // 是否审核通过（跟随 status）
	Verified      bool           `gorm:"not null;default:false;index" json:"verified"`                    // 是否通过上架核验
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                                      // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// Flags 读取审核字段
func (p *Product) Flags() approval.ProductFlags {
	return approval.ProductFlags{
		Status:   approval.ProductStatus(p.Status),
		Approved: p.Approved,
		Verified: p.Verified,
	}
}

// SetFlags 写回审核字段
func (p *Product) SetFlags(f approval.ProductFlags) {
	p.Status = string(f.Status)
	p.Approved = f.Approved
	p.Verified = f.Verified
}

// PubliclyVisible 是否出现在公开市场
func (p *Product) PubliclyVisible() bool {
	return approval.IsPubliclyVisible(p.Flags())
}

// ShopVisible 是否出现在店铺公开页
func (p *Product) ShopVisible() bool {
	return approval.IsShopVisible(p.Flags())
}
