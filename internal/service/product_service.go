package service

import (
	"strings"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务，所有审核字段写入都经过 approval 状态机
type ProductService struct {
	repo     repository.ProductRepository
	userRepo repository.UserRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, userRepo repository.UserRepository) *ProductService {
	return &ProductService{repo: repo, userRepo: userRepo}
}

// ProductInput 卖家创建/更新商品输入
type ProductInput struct {
	Slug          string
	Title         string
	Description   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	MinOrderQty   int
}

// AdminProductFilter 后台商品列表条件
type AdminProductFilter struct {
	SellerID uint
	Status   string
	Search   string
	Page     int
	PageSize int
}

// ListPublic 公开市场商品列表：approved 且 verified
func (s *ProductService) ListPublic(search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:            page,
		PageSize:        pageSize,
		Search:          search,
		PubliclyVisible: true,
	})
}

// GetPublicBySlug 公开商品详情，不可公开的商品视为不存在
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if product == nil || !product.PubliclyVisible() {
		return nil, ErrNotFound
	}
	return product, nil
}

// ListShop 店铺商品列表。preview 为卖家本人预览，返回全部自有商品；否则只返回店铺可见商品。
func (s *ProductService) ListShop(sellerID uint, preview bool, page, pageSize int) ([]models.Product, int64, error) {
	if sellerID == 0 {
		return nil, 0, ErrNotFound
	}
	return s.repo.List(repository.ProductListFilter{
		Page:        page,
		PageSize:    pageSize,
		SellerID:    sellerID,
		ShopVisible: !preview,
	})
}

// ListAdmin 后台商品列表
func (s *ProductService) ListAdmin(filter AdminProductFilter) ([]models.Product, int64, error) {
	status := strings.TrimSpace(filter.Status)
	if status != "" {
		parsed, err := approval.ParseProductStatus(status)
		if err != nil {
			return nil, 0, err
		}
		status = string(parsed)
	}
	return s.repo.List(repository.ProductListFilter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		SellerID: filter.SellerID,
		Status:   status,
		Search:   filter.Search,
	})
}

// GetAdminByID 后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// CreateForSeller 卖家创建商品，审核字段固定为 pending/false/false
func (s *ProductService) CreateForSeller(sellerID uint, input ProductInput) (*models.Product, error) {
	if err := s.ensureSeller(sellerID); err != nil {
		return nil, err
	}
	product := &models.Product{SellerID: sellerID}
	if err := s.applyInput(product, input); err != nil {
		return nil, err
	}
	slug, err := uniqueSlug(firstNonEmpty(input.Slug, input.Title), "product", func(candidate string) (bool, error) {
		count, err := s.repo.CountBySlug(candidate, 0)
		return count > 0, err
	})
	if err != nil {
		return nil, err
	}
	product.Slug = slug
	product.SetFlags(approval.NewProductFlags())

	if err := s.repo.Create(product); err != nil {
		return nil, persistErr("create", "product", 0, err)
	}
	logger.Infow("product_created", "product_id", product.ID, "seller_id", sellerID)
	return product, nil
}

// UpdateForSeller 卖家更新商品内容字段，不影响审核状态
func (s *ProductService) UpdateForSeller(sellerID, productID uint, input ProductInput) (*models.Product, error) {
	product, err := s.getOwned(sellerID, productID)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(product, input); err != nil {
		return nil, err
	}
	if slug := slugify(input.Slug); slug != "" && slug != product.Slug {
		count, err := s.repo.CountBySlug(slug, product.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSlugExists
		}
		product.Slug = slug
	}
	if err := s.repo.Update(product); err != nil {
		return nil, persistErr("update", "product", product.ID, err)
	}
	return product, nil
}

// DeleteForSeller 卖家删除自有商品
func (s *ProductService) DeleteForSeller(sellerID, productID uint) error {
	product, err := s.getOwned(sellerID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(product.ID); err != nil {
		return persistErr("delete", "product", product.ID, err)
	}
	return nil
}

// Approve 管理员审核通过
func (s *ProductService) Approve(id, adminID uint) (*models.Product, error) {
	return s.transition(id, adminID, "product_approved", func(f approval.ProductFlags) (approval.ProductFlags, error) {
		return approval.ApplyApproval(f), nil
	})
}

// Unapprove 管理员撤销审核，回到 pending
func (s *ProductService) Unapprove(id, adminID uint) (*models.Product, error) {
	return s.transition(id, adminID, "product_unapproved", func(f approval.ProductFlags) (approval.ProductFlags, error) {
		return approval.ApplyStatus(f, approval.ProductStatusPending)
	})
}

// SetStatus 管理员设置商品状态，非法状态返回 *approval.InvalidStatusError
func (s *ProductService) SetStatus(id uint, status string, adminID uint) (*models.Product, error) {
	parsed, err := approval.ParseProductStatus(status)
	if err != nil {
		return nil, err
	}
	return s.transition(id, adminID, "product_status_changed", func(f approval.ProductFlags) (approval.ProductFlags, error) {
		return approval.ApplyStatus(f, parsed)
	})
}

func (s *ProductService) transition(id, adminID uint, event string, apply func(approval.ProductFlags) (approval.ProductFlags, error)) (*models.Product, error) {
	product, err := s.GetAdminByID(id)
	if err != nil {
		return nil, err
	}
	before := product.Flags()
	after, err := apply(before)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.UpdateApprovalFields(product.ID, after); err != nil {
		return nil, persistErr("update_approval", "product", product.ID, err)
	}
	product.SetFlags(after)
	logger.Infow(event,
		"product_id", product.ID,
		"admin_id", adminID,
		"from_status", before.Status,
		"to_status", after.Status,
		"publicly_visible", approval.IsPubliclyVisible(after),
	)
	return product, nil
}

func (s *ProductService) getOwned(sellerID, productID uint) (*models.Product, error) {
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	if product.SellerID != sellerID {
		return nil, ErrProductNotOwned
	}
	return product, nil
}

func (s *ProductService) ensureSeller(userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	switch user.UserRole() {
	case approval.RoleSeller, approval.RoleProspectiveSeller:
		return nil
	default:
		return ErrNotSeller
	}
}

func (s *ProductService) applyInput(product *models.Product, input ProductInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrProductTitleInvalid
	}
	price := models.NewMoneyFromDecimal(input.PriceAmount)
	if !price.IsPositive() {
		return ErrProductPriceInvalid
	}
	moq := input.MinOrderQty
	if moq == 0 {
		moq = constants.DefaultMinOrderQty
	}
	if moq < 1 {
		return ErrProductMOQInvalid
	}
	currency := strings.ToUpper(strings.TrimSpace(input.PriceCurrency))
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	product.Title = title
	product.Description = strings.TrimSpace(input.Description)
	product.PriceAmount = price
	product.PriceCurrency = currency
	product.MinOrderQty = moq
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
