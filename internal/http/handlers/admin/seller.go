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

// UpdateSellerStatusRequest 修改店铺状态请求
type UpdateSellerStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// GetAdminSellers 卖家店铺列表
func (h *Handler) GetAdminSellers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := service.AdminSellerFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := strings.TrimSpace(c.Query("onboarding_completed")); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid onboarding_completed", nil)
			return
		}
		filter.OnboardingCompleted = &completed
	}

	profiles, total, err := h.SellerProfileService.ListAdmin(filter)
	if err != nil {
		respondServiceError(c, err, "failed to list sellers")
		return
	}
	response.SuccessWithPage(c, profiles, page, pageSize, total)
}

// GetAdminSeller 卖家店铺详情
func (h *Handler) GetAdminSeller(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "user_id")
	if !ok {
		return
	}
	profile, err := h.SellerProfileService.GetAdmin(userID)
	if err != nil {
		respondServiceError(c, err, "failed to load seller")
		return
	}
	response.Success(c, profile)
}

// UpdateSellerStatus 设置店铺状态并记录备注
func (h *Handler) UpdateSellerStatus(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "user_id")
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req UpdateSellerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	profile, note, err := h.SellerProfileService.SetStatus(c.Request.Context(), userID, req.Status, strings.TrimSpace(req.Note), adminID)
	if err != nil {
		respondServiceError(c, err, "failed to update seller status")
		return
	}
	h.recordAudit(c, service.AdminAuditRecordInput{
		OperatorAdminID: adminID,
		Action:          constants.AuditActionSellerStatus,
		TargetType:      constants.AuditTargetSeller,
		TargetID:        userID,
		Detail:          map[string]interface{}{"status": profile.Status, "note": note.Note},
	})
	response.Success(c, gin.H{
		"profile": profile,
		"note":    note,
	})
}

// GetSellerStatusNotes 店铺状态变更备注
func (h *Handler) GetSellerStatusNotes(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "user_id")
	if !ok {
		return
	}
	notes, err := h.SellerProfileService.ListStatusNotes(userID)
	if err != nil {
		respondServiceError(c, err, "failed to load status notes")
		return
	}
	response.Success(c, notes)
}
