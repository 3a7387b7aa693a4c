package app

import (
	"errors"
	"fmt"

	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/provider"
	"github.com/marketgate/internal/router"
	"github.com/marketgate/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !IsValidMode(mode) {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	container := provider.NewContainer(cfg)
	services, err := BuildServices(cfg, container, mode)
	if err != nil {
		return nil, err
	}
	return NewRunner(services...), nil
}

// BuildServices 按运行模式组装 HTTP 与 Worker 服务
func BuildServices(cfg *config.Config, container *provider.Container, mode string) ([]Service, error) {
	if cfg == nil || container == nil {
		return nil, errors.New("config or container is nil")
	}
	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server, engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		switch {
		case cfg.Queue.Enabled:
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		case mode == ModeWorker:
			return nil, errors.New("worker mode requires queue.enabled")
		default:
			// all 模式下队列未启用时只运行 HTTP
			logger.Warnw("app_worker_skipped_queue_disabled", "mode", mode)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return services, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = seconds(opts.Config.Server.ShutdownTimeoutSeconds)
	}
	opts = normalizeOptions(opts)

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Addr(), "mode", opts.Mode, "services", runner.Names())
	return RunWithOptions(runner, opts)
}
