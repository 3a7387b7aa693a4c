package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/marketgate/internal/constants"
	handlershared "github.com/marketgate/internal/http/handlers/shared"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/queue"
	"github.com/marketgate/internal/service"

	"github.com/gin-gonic/gin"
)

// ReconcileRequest 触发审核字段修复请求
type ReconcileRequest struct {
	DryRun    bool `json:"dry_run"`
	BatchSize int  `json:"batch_size"`
	Workers   int  `json:"workers"`
	Async     bool `json:"async"`
}

// RunReconcile 执行审核字段修复；async=true 时投递到队列
func (h *Handler) RunReconcile(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "invalid request body", err)
			return
		}
	}
	if raw := strings.TrimSpace(c.Query("async")); raw != "" {
		async, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid async", nil)
			return
		}
		req.Async = async
	}

	if req.Async {
		h.enqueueReconcile(c, adminID, req)
		return
	}

	report, err := h.ReconcileService.Reconcile(c.Request.Context(), service.ReconcileOptions{
		Trigger:     constants.ReconcileTriggerAdmin,
		RequestedBy: adminID,
		DryRun:      req.DryRun,
		BatchSize:   req.BatchSize,
		Workers:     req.Workers,
	})
	if err != nil {
		// 中途中止时仍返回已完成部分的报告
		requestLog(c).Errorw("admin_reconcile_aborted", "admin_id", adminID, "error", err)
		response.ErrorWithData(c, response.CodeInternal, "reconcile aborted", gin.H{"report": report})
		return
	}
	h.recordAudit(c, service.AdminAuditRecordInput{
		OperatorAdminID: adminID,
		Action:          constants.AuditActionReconcileRun,
		TargetType:      constants.AuditTargetReconcile,
		TargetID:        report.RunID,
		Detail: map[string]interface{}{
			"dry_run":      report.DryRun,
			"total_fixed":  report.TotalFixed(),
			"total_failed": report.TotalFailed(),
		},
	})
	response.Success(c, report)
}

func (h *Handler) enqueueReconcile(c *gin.Context, adminID uint, req ReconcileRequest) {
	if h.QueueClient == nil || !h.QueueClient.Enabled() {
		respondServiceError(c, service.ErrQueueUnavailable, "task queue unavailable")
		return
	}
	taskID, err := h.QueueClient.EnqueueApprovalReconcile(c.Request.Context(), queue.ApprovalReconcilePayload{
		Trigger:     constants.ReconcileTriggerQueue,
		DryRun:      req.DryRun,
		RequestedBy: adminID,
		BatchSize:   req.BatchSize,
		Workers:     req.Workers,
	})
	if err != nil {
		if errors.Is(err, queue.ErrTaskDuplicated) {
			respondError(c, response.CodeConflict, "a reconcile task is already queued", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to enqueue reconcile", err)
		return
	}
	h.recordAudit(c, service.AdminAuditRecordInput{
		OperatorAdminID: adminID,
		Action:          constants.AuditActionReconcileEnqueue,
		TargetType:      constants.AuditTargetReconcile,
		Detail:          map[string]interface{}{"task_id": taskID, "dry_run": req.DryRun},
	})
	requestLog(c).Infow("admin_reconcile_enqueued", "admin_id", adminID, "task_id", taskID, "dry_run", req.DryRun)
	response.Success(c, gin.H{
		"queued":  true,
		"task_id": taskID,
	})
}

// ListReconcileRuns 修复运行记录
func (h *Handler) ListReconcileRuns(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	runs, total, err := h.ReconcileService.ListRuns(strings.TrimSpace(c.Query("trigger")), page, pageSize)
	if err != nil {
		respondServiceError(c, err, "failed to list reconcile runs")
		return
	}
	response.SuccessWithPage(c, runs, page, pageSize, total)
}
