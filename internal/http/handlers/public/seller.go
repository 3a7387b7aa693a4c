package public

import (
	"github.com/marketgate/internal/approval"
	handlershared "github.com/marketgate/internal/http/handlers/shared"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// UpdateSellerProfileRequest 编辑店铺资料请求，缺省字段保持不变
type UpdateSellerProfileRequest struct {
	ShopName           *string `json:"shop_name"`
	ShopSlug           *string `json:"shop_slug"`
	Description        *string `json:"description"`
	ShippingPolicy     *string `json:"shipping_policy"`
	PayoutMethod       *string `json:"payout_method"`
	PayoutAccount      *string `json:"payout_account"`
	CompleteOnboarding bool    `json:"complete_onboarding"`
}

// SellerProductRequest 卖家创建/编辑商品请求
type SellerProductRequest struct {
	Slug          string          `json:"slug"`
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
	PriceCurrency string          `json:"price_currency"`
	MinOrderQty   int             `json:"min_order_qty"`
}

func (r SellerProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Slug:          r.Slug,
		Title:         r.Title,
		Description:   r.Description,
		PriceAmount:   r.PriceAmount,
		PriceCurrency: r.PriceCurrency,
		MinOrderQty:   r.MinOrderQty,
	}
}

// SellerProductView 卖家视角的商品，附带可见性
type SellerProductView struct {
	models.Product
	ShopVisible     bool `json:"shop_visible"`
	PubliclyVisible bool `json:"publicly_visible"`
}

func toSellerProductViews(products []models.Product) []SellerProductView {
	items := make([]SellerProductView, 0, len(products))
	for i := range products {
		items = append(items, SellerProductView{
			Product:         products[i],
			ShopVisible:     products[i].ShopVisible(),
			PubliclyVisible: products[i].PubliclyVisible(),
		})
	}
	return items
}

// GetSellerProfile 获取（必要时懒创建）当前卖家的店铺资料
func (h *Handler) GetSellerProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	profile, err := h.SellerProfileService.GetOrCreate(userID)
	if err != nil {
		respondServiceError(c, err, "failed to load seller profile")
		return
	}
	response.Success(c, profile)
}

// UpdateSellerProfile 编辑店铺资料
func (h *Handler) UpdateSellerProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateSellerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	profile, err := h.SellerProfileService.UpdateProfile(c.Request.Context(), userID, service.UpdateSellerProfileInput{
		ShopName:           req.ShopName,
		ShopSlug:           req.ShopSlug,
		Description:        req.Description,
		ShippingPolicy:     req.ShippingPolicy,
		PayoutMethod:       req.PayoutMethod,
		PayoutAccount:      req.PayoutAccount,
		CompleteOnboarding: req.CompleteOnboarding,
	})
	if err != nil {
		respondServiceError(c, err, "failed to update seller profile")
		return
	}
	response.Success(c, profile)
}

// CompleteOnboarding 完成入驻并激活店铺
func (h *Handler) CompleteOnboarding(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	profile, err := h.SellerProfileService.CompleteOnboarding(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "failed to complete onboarding")
		return
	}
	response.Success(c, gin.H{
		"profile":   profile,
		"reachable": approval.IsReachable(profile.State()),
	})
}

// GetSellerProducts 当前卖家的全部商品（含未审核）
func (h *Handler) GetSellerProducts(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	products, total, err := h.ProductService.ListShop(userID, true, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "failed to list products")
		return
	}
	response.SuccessWithPage(c, toSellerProductViews(products), page, pageSize, total)
}

// CreateSellerProduct 卖家创建商品，初始为 pending
func (h *Handler) CreateSellerProduct(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req SellerProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	product, err := h.ProductService.CreateForSeller(userID, req.toInput())
	if err != nil {
		respondServiceError(c, err, "failed to create product")
		return
	}
	response.Success(c, product)
}

// UpdateSellerProduct 卖家编辑商品内容，审核字段不变
func (h *Handler) UpdateSellerProduct(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req SellerProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	product, err := h.ProductService.UpdateForSeller(userID, productID, req.toInput())
	if err != nil {
		respondServiceError(c, err, "failed to update product")
		return
	}
	response.Success(c, product)
}

// DeleteSellerProduct 卖家删除商品
func (h *Handler) DeleteSellerProduct(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.DeleteForSeller(userID, productID); err != nil {
		respondServiceError(c, err, "failed to delete product")
		return
	}
	response.Success(c, nil)
}

// GetShopPreview 卖家预览自己的店铺：不论店铺状态，列出全部商品及其可见性
func (h *Handler) GetShopPreview(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	profile, err := h.SellerProfileService.GetOrCreate(userID)
	if err != nil {
		respondServiceError(c, err, "failed to load seller profile")
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	products, total, err := h.ProductService.ListShop(userID, true, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "failed to list products")
		return
	}
	response.Success(c, gin.H{
		"profile":    profile,
		"reachable":  approval.IsReachable(profile.State()),
		"products":   toSellerProductViews(products),
		"pagination": response.NewPagination(page, pageSize, total),
	})
}
