package admin

import (
	"strconv"
	"strings"

	"github.com/marketgate/internal/constants"
	handlershared "github.com/marketgate/internal/http/handlers/shared"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateProductStatusRequest 修改商品状态请求
type UpdateProductStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminProducts 后台商品列表，可按卖家与状态过滤
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	sellerID, _ := strconv.ParseUint(c.Query("seller_id"), 10, 64)

	products, total, err := h.ProductService.ListAdmin(service.AdminProductFilter{
		SellerID: uint(sellerID),
		Status:   strings.TrimSpace(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "failed to list products")
		return
	}
	response.SuccessWithPage(c, products, page, pageSize, total)
}

// GetAdminProduct 商品详情（含审核字段）
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetAdminByID(id)
	if err != nil {
		respondServiceError(c, err, "failed to load product")
		return
	}
	response.Success(c, product)
}

// ApproveProduct 审核通过：status=approved, approved=true, verified=true
func (h *Handler) ApproveProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	product, err := h.ProductService.Approve(id, adminID)
	if err != nil {
		respondServiceError(c, err, "failed to approve product")
		return
	}
	h.recordAudit(c, service.AdminAuditRecordInput{
		OperatorAdminID: adminID,
		Action:          constants.AuditActionProductApprove,
		TargetType:      constants.AuditTargetProduct,
		TargetID:        product.ID,
	})
	response.Success(c, product)
}

// UnapproveProduct 撤销审核，商品回到 pending
func (h *Handler) UnapproveProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	product, err := h.ProductService.Unapprove(id, adminID)
	if err != nil {
		respondServiceError(c, err, "failed to unapprove product")
		return
	}
	h.recordAudit(c, service.AdminAuditRecordInput{
		OperatorAdminID: adminID,
		Action:          constants.AuditActionProductUnapprove,
		TargetType:      constants.AuditTargetProduct,
		TargetID:        product.ID,
	})
	response.Success(c, product)
}

// UpdateProductStatus 设置商品状态，approved/verified 跟随状态
func (h *Handler) UpdateProductStatus(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req UpdateProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	product, err := h.ProductService.SetStatus(id, req.Status, adminID)
	if err != nil {
		respondServiceError(c, err, "failed to update product status")
		return
	}
	h.recordAudit(c, service.AdminAuditRecordInput{
		OperatorAdminID: adminID,
		Action:          constants.AuditActionProductStatus,
		TargetType:      constants.AuditTargetProduct,
		TargetID:        product.ID,
		Detail:          map[string]interface{}{"status": product.Status},
	})
	response.Success(c, product)
}
