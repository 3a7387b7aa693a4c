package worker

import (
	"context"
	"errors"

	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/provider"
	"github.com/marketgate/internal/queue"
	"github.com/marketgate/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskApprovalReconcile, c.handleApprovalReconcile)
}

func (c *Consumer) handleApprovalReconcile(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_approval_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseApprovalReconcilePayload(task)
	if err != nil {
		logger.Warnw("worker_approval_reconcile_unmarshal_failed", "error", err)
		// 载荷无法解析时重试没有意义
		return errors.Join(err, asynq.SkipRetry)
	}
	if c.Container == nil || c.ReconcileService == nil {
		logger.Warnw("worker_approval_reconcile_skip_service_nil")
		return nil
	}
	trigger := payload.Trigger
	if trigger == "" {
		trigger = constants.ReconcileTriggerQueue
	}
	report, err := c.ReconcileService.Reconcile(ctx, service.ReconcileOptions{
		Trigger:     trigger,
		RequestedBy: payload.RequestedBy,
		DryRun:      payload.DryRun,
		BatchSize:   payload.BatchSize,
		Workers:     payload.Workers,
	})
	if err != nil {
		logger.Warnw("worker_approval_reconcile_failed",
			"trigger", trigger,
			"requested_by", payload.RequestedBy,
			"error", err,
		)
		return err
	}
	if report.TotalFailed() > 0 {
		// 单条失败不重试整批，下一次运行会再次尝试
		logger.Warnw("worker_approval_reconcile_partial",
			"run_id", report.RunID,
			"failed", report.TotalFailed(),
			"fixed", report.TotalFixed(),
		)
	}
	return nil
}
