package worker

import (
	"context"
	"errors"
	"time"

	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/queue"
	"github.com/marketgate/internal/service"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name      string
	server    *asynq.Server
	mux       *asynq.ServeMux
	consumer  *Consumer
	scheduler *reconcileScheduler
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = newAsynqLogger()
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:      "worker",
		server:    server,
		mux:       mux,
		consumer:  consumer,
		scheduler: newReconcileScheduler(consumer),
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	if s.scheduler != nil {
		go s.scheduler.run(ctx)
	}
	// 信号处理交给 app.Runner，这里只等待上层取消
	<-ctx.Done()
	return nil
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// reconcileScheduler 按 approval.reconcile_interval_minutes 定时执行修复
type reconcileScheduler struct {
	interval time.Duration
	svc      *service.ReconcileService
}

func newReconcileScheduler(consumer *Consumer) *reconcileScheduler {
	if consumer == nil || consumer.Container == nil || consumer.Config == nil || consumer.ReconcileService == nil {
		return nil
	}
	minutes := consumer.Config.Approval.ReconcileIntervalMinutes
	if minutes <= 0 {
		return nil
	}
	return &reconcileScheduler{
		interval: time.Duration(minutes) * time.Minute,
		svc:      consumer.ReconcileService,
	}
}

func (s *reconcileScheduler) run(ctx context.Context) {
	if s == nil || s.svc == nil || s.interval <= 0 {
		return
	}
	logger.Infow("worker_reconcile_schedule_started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *reconcileScheduler) runOnce(ctx context.Context) {
	if _, err := s.svc.Reconcile(ctx, service.ReconcileOptions{Trigger: constants.ReconcileTriggerSchedule}); err != nil {
		logger.Warnw("worker_reconcile_schedule_failed", "error", err)
	}
}
