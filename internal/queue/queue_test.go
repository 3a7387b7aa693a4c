package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/constants"

	"github.com/hibiken/asynq"
)

func TestApprovalReconcileTaskRoundTrip(t *testing.T) {
	task, err := NewApprovalReconcileTask(ApprovalReconcilePayload{Trigger: "admin", DryRun: true, RequestedBy: 7})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != constants.TaskApprovalReconcile {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseApprovalReconcilePayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.Trigger != "admin" || !payload.DryRun || payload.RequestedBy != 7 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestParseApprovalReconcilePayloadErrors(t *testing.T) {
	if _, err := ParseApprovalReconcilePayload(asynq.NewTask(TaskApprovalReconcile, []byte("{"))); err == nil {
		t.Fatalf("expected decode error")
	}
	payload, err := ParseApprovalReconcilePayload(asynq.NewTask(TaskApprovalReconcile, nil))
	if err != nil || payload != (ApprovalReconcilePayload{}) {
		t.Fatalf("empty payload should decode to zero value: %+v %v", payload, err)
	}
}

func TestDisabledClient(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if _, err := client.EnqueueApprovalReconcile(context.Background(), ApprovalReconcilePayload{}); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("expected ErrQueueDisabled, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfig(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, Concurrency: 3})
	if opt.Addr != "redis:6380" {
		t.Fatalf("unexpected addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 3 || cfg.Queues[constants.QueueCritical] == 0 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

func TestRedisOptDefaults(t *testing.T) {
	if opt := RedisOpt(nil); opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected default addr: %s", opt.Addr)
	}
	opt := RedisOpt(&config.QueueConfig{Host: "::1", Password: "pw", DB: 2})
	if opt.Addr != "[::1]:6379" || opt.Password != "pw" || opt.DB != 2 {
		t.Fatalf("unexpected opt: %+v", opt)
	}
}
