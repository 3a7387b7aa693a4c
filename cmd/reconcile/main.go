package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketgate/internal/cache"
	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/provider"
	"github.com/marketgate/internal/queue"
	"github.com/marketgate/internal/service"
)

func main() {
	var (
		dryRun    bool
		batchSize int
		workers   int
		enqueue   bool
		asJSON    bool
	)
	flag.BoolVar(&dryRun, "dry-run", false, "只统计需要修复的记录，不写库")
	flag.IntVar(&batchSize, "batch-size", 0, "每批扫描条数，0 使用配置值")
	flag.IntVar(&workers, "workers", 0, "并发写入数，0 使用配置值")
	flag.BoolVar(&enqueue, "enqueue", false, "投递到异步队列由 worker 执行")
	flag.BoolVar(&asJSON, "json", false, "以 JSON 输出报告")
	flag.Parse()

	config.LoadDotEnv()
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if enqueue {
		if err := enqueueReconcile(context.Background(), cfg, dryRun, batchSize, workers); err != nil {
			stdLog.Fatalf("enqueue reconcile failed: %v", err)
		}
		return
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migrate failed: %v", err)
	}
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("reconcile_cli_redis_unavailable", "error", err)
	}
	defer func() { _ = cache.Close() }()

	container, err := provider.Build(cfg, models.DB, nil)
	if err != nil {
		stdLog.Fatalf("container init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := container.ReconcileService.Reconcile(ctx, service.ReconcileOptions{
		Trigger:   constants.ReconcileTriggerCLI,
		DryRun:    dryRun,
		BatchSize: batchSize,
		Workers:   workers,
	})
	printReport(report, asJSON)
	if err != nil {
		// 扫描中止才以非零退出；单条失败已计入报告
		stdLog.Fatalf("reconcile aborted: %v", err)
	}
}

func enqueueReconcile(ctx context.Context, cfg *config.Config, dryRun bool, batchSize, workers int) error {
	client, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		return err
	}
	defer client.Close()
	if !client.Enabled() {
		return queue.ErrQueueDisabled
	}
	taskID, err := client.EnqueueApprovalReconcile(ctx, queue.ApprovalReconcilePayload{
		Trigger:   constants.ReconcileTriggerQueue,
		DryRun:    dryRun,
		BatchSize: batchSize,
		Workers:   workers,
	})
	if err != nil {
		return err
	}
	fmt.Printf("queued task %s\n", taskID)
	return nil
}

func printReport(report *service.ReconciliationReport, asJSON bool) {
	if report == nil {
		return
	}
	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(report)
		return
	}
	mode := "apply"
	if report.DryRun {
		mode = "dry-run"
	}
	fmt.Printf("reconcile run #%d (%s, %s)\n", report.RunID, report.Trigger, mode)
	fmt.Printf("  %-9s scanned=%d fixed=%d failed=%d\n", "products", report.Products.Scanned, report.Products.Fixed, report.Products.Failed)
	fmt.Printf("  %-9s scanned=%d fixed=%d failed=%d\n", "profiles", report.Profiles.Scanned, report.Profiles.Fixed, report.Profiles.Failed)
	fmt.Printf("  %-9s scanned=%d fixed=%d failed=%d\n", "users", report.Users.Scanned, report.Users.Fixed, report.Users.Failed)
	fmt.Printf("  duration %s\n", report.FinishedAt.Sub(report.StartedAt))
}
