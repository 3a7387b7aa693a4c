package admin

import (
	"strings"

	"github.com/marketgate/internal/constants"
	handlershared "github.com/marketgate/internal/http/handlers/shared"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 启用/禁用用户请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_from", nil)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_to", nil)
		return
	}

	users, total, err := h.UserAuthService.ListUsers(service.AdminUserFilter{
		Keyword:     c.Query("keyword"),
		Role:        c.Query("role"),
		Status:      c.Query("status"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "failed to list users")
		return
	}
	response.SuccessWithPage(c, users, page, pageSize, total)
}

// UpdateUserStatus 启用或禁用用户
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	user, err := h.UserAuthService.SetUserStatus(c.Request.Context(), userID, req.Status)
	if err != nil {
		respondServiceError(c, err, "failed to update user status")
		return
	}
	h.recordAudit(c, service.AdminAuditRecordInput{
		Action:     constants.AuditActionUserStatus,
		TargetType: constants.AuditTargetUser,
		TargetID:   userID,
		Detail:     map[string]interface{}{"status": user.Status},
	})
	response.Success(c, user)
}
