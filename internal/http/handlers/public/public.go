package public

import (
	"strings"
	"time"

	handlershared "github.com/marketgate/internal/http/handlers/shared"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/models"

	"github.com/gin-gonic/gin"
)

// PublicProductView 公开商品响应结构，不暴露审核字段
type PublicProductView struct {
	ID            uint         `json:"id"`
	SellerID      uint         `json:"seller_id"`
	Slug          string       `json:"slug"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	PriceAmount   models.Money `json:"price_amount"`
	PriceCurrency string       `json:"price_currency"`
	MinOrderQty   int          `json:"min_order_qty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func toPublicProductView(p *models.Product) PublicProductView {
	return PublicProductView{
		ID:            p.ID,
		SellerID:      p.SellerID,
		Slug:          p.Slug,
		Title:         p.Title,
		Description:   p.Description,
		PriceAmount:   p.PriceAmount,
		PriceCurrency: p.PriceCurrency,
		MinOrderQty:   p.MinOrderQty,
		CreatedAt:     p.CreatedAt,
	}
}

func toPublicProductViews(products []models.Product) []PublicProductView {
	items := make([]PublicProductView, 0, len(products))
	for i := range products {
		items = append(items, toPublicProductView(&products[i]))
	}
	return items
}

// GetProducts 公开市场商品列表，只包含 approved 且 verified 的商品
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListPublic(search, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "failed to list products")
		return
	}
	response.SuccessWithPage(c, toPublicProductViews(products), page, pageSize, total)
}

// GetProductBySlug 公开商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.ProductService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		respondServiceError(c, err, "failed to load product")
		return
	}
	response.Success(c, toPublicProductView(product))
}

// GetShop 店铺公开信息，仅 active 店铺可访问
func (h *Handler) GetShop(c *gin.Context) {
	shop, err := h.SellerProfileService.GetPublicShop(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err, "failed to load shop")
		return
	}
	response.Success(c, shop)
}

// GetShopProducts 店铺公开商品列表：店铺可达且商品 status=approved
func (h *Handler) GetShopProducts(c *gin.Context) {
	shop, err := h.SellerProfileService.GetPublicShop(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err, "failed to load shop")
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	products, total, err := h.ProductService.ListShop(shop.UserID, false, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "failed to list shop products")
		return
	}
	response.SuccessWithPage(c, toPublicProductViews(products), page, pageSize, total)
}
