package queue

import (
	"encoding/json"
	"fmt"

	"github.com/marketgate/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskApprovalReconcile 审核字段修复任务
	TaskApprovalReconcile = constants.TaskApprovalReconcile
)

// ApprovalReconcilePayload 审核字段修复任务载荷
type ApprovalReconcilePayload struct {
	Trigger     string `json:"trigger"`
	DryRun      bool   `json:"dry_run"`
	RequestedBy uint   `json:"requested_by"`
	BatchSize   int    `json:"batch_size,omitempty"`
	Workers     int    `json:"workers,omitempty"`
}

// NewApprovalReconcileTask 创建审核字段修复任务
func NewApprovalReconcileTask(payload ApprovalReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskApprovalReconcile, body), nil
}

// ParseApprovalReconcilePayload 解析任务载荷
func ParseApprovalReconcilePayload(task *asynq.Task) (ApprovalReconcilePayload, error) {
	var payload ApprovalReconcilePayload
	if task == nil {
		return payload, fmt.Errorf("nil task")
	}
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", task.Type(), err)
	}
	return payload, nil
}
