package approval

import "strings"

// ProductStatus 商品生命周期状态
type ProductStatus string

// 商品状态常量
const (
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusDisabled ProductStatus = "disabled"
	ProductStatusHold     ProductStatus = "hold"
)

// ProductStatuses 全部合法商品状态
func ProductStatuses() []ProductStatus {
	return []ProductStatus{
		ProductStatusPending,
		ProductStatusApproved,
		ProductStatusDisabled,
		ProductStatusHold,
	}
}

// ParseProductStatus 解析商品状态，大小写与首尾空白不敏感
func ParseProductStatus(raw string) (ProductStatus, error) {
	value := ProductStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case ProductStatusPending, ProductStatusApproved, ProductStatusDisabled, ProductStatusHold:
		return value, nil
	default:
		return "", &InvalidStatusError{Kind: "product", Value: raw}
	}
}

// ProductFlags 商品上持久化的三个审核字段
type ProductFlags struct {
	Status   ProductStatus
	Approved bool
	Verified bool
}

// Lifecycle 商品生命周期的标签联合类型。
// 每个变体只携带该状态下有意义的数据，FlagsFor 推导出持久化字段。
type Lifecycle interface {
	Status() ProductStatus
}

// Pending 待审核
type Pending struct{}

// Approved 已审核；Verified 表示是否已通过上架核验
type Approved struct {
	Verified bool
}

// Disabled 已下架
type Disabled struct{}

// Hold 暂扣
type Hold struct{}

func (Pending) Status() ProductStatus  { return ProductStatusPending }
func (Approved) Status() ProductStatus { return ProductStatusApproved }
func (Disabled) Status() ProductStatus { return ProductStatusDisabled }
func (Hold) Status() ProductStatus     { return ProductStatusHold }

// FlagsFor 由生命周期变体推导规范字段组合
func FlagsFor(l Lifecycle) ProductFlags {
	switch v := l.(type) {
	case Approved:
		return ProductFlags{Status: ProductStatusApproved, Approved: true, Verified: v.Verified}
	case nil:
		return ProductFlags{Status: ProductStatusPending}
	default:
		return ProductFlags{Status: v.Status()}
	}
}

// LifecycleOf 从持久化字段读取生命周期。status 为权威字段，
// 非法组合（例如 status=approved 但 approved=false）按 status 解读，verified 取原值。
func LifecycleOf(f ProductFlags) Lifecycle {
	switch f.Status {
	case ProductStatusApproved:
		return Approved{Verified: f.Verified}
	case ProductStatusDisabled:
		return Disabled{}
	case ProductStatusHold:
		return Hold{}
	default:
		return Pending{}
	}
}

// Consistent 判断字段是否满足 approved == (status == approved)
func (f ProductFlags) Consistent() bool {
	return f.Approved == (f.Status == ProductStatusApproved)
}

// NewProductFlags 新建商品的初始字段
func NewProductFlags() ProductFlags {
	return FlagsFor(Pending{})
}

// ApplyApproval 管理员审核通过。唯一会单独把 verified 置为 true 的操作，幂等。
func ApplyApproval(f ProductFlags) ProductFlags {
	return FlagsFor(Approved{Verified: true})
}

// ApplyStatus 管理员修改商品状态。approved 与 verified 同时跟随 status == approved。
// 非法状态返回 *InvalidStatusError，原字段不变。
func ApplyStatus(f ProductFlags, status ProductStatus) (ProductFlags, error) {
	parsed, err := ParseProductStatus(string(status))
	if err != nil {
		return f, err
	}
	if parsed == ProductStatusApproved {
		return FlagsFor(Approved{Verified: true}), nil
	}
	return FlagsFor(LifecycleOf(ProductFlags{Status: parsed})), nil
}

// IsPubliclyVisible 商品是否可在公开市场列出
func IsPubliclyVisible(f ProductFlags) bool {
	return f.Approved && f.Verified
}

// IsShopVisible 商品是否在卖家店铺（非预览）中可见，不要求 verified
func IsShopVisible(f ProductFlags) bool {
	return f.Status == ProductStatusApproved && f.Approved
}

// ProductNeedsRepair status 已是 approved，但 approved/verified 未同步
func ProductNeedsRepair(f ProductFlags) bool {
	return f.Status == ProductStatusApproved && (!f.Approved || !f.Verified)
}

// RepairProduct 只向“更可见”方向修复，从不把 true 改为 false
func RepairProduct(f ProductFlags) ProductFlags {
	if !ProductNeedsRepair(f) {
		return f
	}
	f.Approved = true
	f.Verified = true
	return f
}
