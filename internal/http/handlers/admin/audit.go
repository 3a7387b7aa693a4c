package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/marketgate/internal/http/handlers/shared"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/repository"
	"github.com/marketgate/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs 管理端操作审计日志
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	operatorAdminID, err := parseOptionalUint(c.Query("operator_admin_id"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid operator_admin_id", nil)
		return
	}
	targetID, err := parseOptionalUint(c.Query("target_id"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid target_id", nil)
		return
	}
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

	items, total, err := h.AdminAuditService.List(repository.AdminAuditLogListFilter{
		Page:            page,
		PageSize:        pageSize,
		OperatorAdminID: operatorAdminID,
		Action:          strings.TrimSpace(c.Query("action")),
		TargetType:      strings.TrimSpace(c.Query("target_type")),
		TargetID:        targetID,
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list audit logs", err)
		return
	}
	response.SuccessWithPage(c, items, page, pageSize, total)
}

// recordAudit 写审计日志，失败只记录告警
func (h *Handler) recordAudit(c *gin.Context, input service.AdminAuditRecordInput) {
	if h == nil || h.AdminAuditService == nil {
		return
	}
	if input.OperatorAdminID == 0 {
		input.OperatorAdminID = c.GetUint("admin_id")
	}
	if input.OperatorUsername == "" {
		input.OperatorUsername = currentUsername(c)
	}
	if input.RequestID == "" {
		input.RequestID = currentRequestID(c)
	}
	if input.OperatorAdminID == 0 || strings.TrimSpace(input.Action) == "" {
		return
	}
	if err := h.AdminAuditService.Record(input); err != nil {
		requestLog(c).Warnw("admin_audit_record_failed",
			"error", err,
			"action", input.Action,
			"operator_admin_id", input.OperatorAdminID,
		)
	}
}

func currentRequestID(c *gin.Context) string {
	value, exists := c.Get("request_id")
	if !exists {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return strings.TrimSpace(requestID)
	}
	return ""
}

func parseOptionalUint(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
