package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/cache"
	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReconcileService 审核字段修复：把历史漂移的商品与店铺修复到当前不变量。
// 只朝“更可见”方向修复，不删除记录，重复执行不会产生新的修复。
type ReconcileService struct {
	productRepo repository.ProductRepository
	profileRepo repository.SellerProfileRepository
	userRepo    repository.UserRepository
	runRepo     repository.ReconcileRunRepository
	engine      approval.ShopEngine
	batchSize   int
	workers     int
}

// NewReconcileService 创建修复服务
func NewReconcileService(
	productRepo repository.ProductRepository,
	profileRepo repository.SellerProfileRepository,
	userRepo repository.UserRepository,
	runRepo repository.ReconcileRunRepository,
	engine approval.ShopEngine,
	batchSize, workers int,
) *ReconcileService {
	return &ReconcileService{
		productRepo: productRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		runRepo:     runRepo,
		engine:      engine,
		batchSize:   normalizeBatchSize(batchSize),
		workers:     normalizeWorkers(workers),
	}
}

// ReconcileOptions 修复参数，零值使用服务默认值
type ReconcileOptions struct {
	Trigger     string
	RequestedBy uint
	DryRun      bool
	BatchSize   int
	Workers     int
}

// EntityReport 单类实体的修复统计。DryRun 时 Fixed 表示将被修复的数量。
type EntityReport struct {
	Scanned int `json:"scanned"`
	Fixed   int `json:"fixed"`
	Failed  int `json:"failed"`
}

// ReconciliationReport 修复报告
type ReconciliationReport struct {
	RunID      uint         `json:"run_id"`
	Trigger    string       `json:"trigger"`
	DryRun     bool         `json:"dry_run"`
	Products   EntityReport `json:"products"`
	Profiles   EntityReport `json:"profiles"`
	Users      EntityReport `json:"users"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// TotalFixed 全部实体修复数
func (r *ReconciliationReport) TotalFixed() int {
	return r.Products.Fixed + r.Profiles.Fixed + r.Users.Fixed
}

// TotalFailed 全部实体失败数
func (r *ReconciliationReport) TotalFailed() int {
	return r.Products.Failed + r.Profiles.Failed + r.Users.Failed
}

type entityCounter struct {
	scanned atomic.Int64
	fixed   atomic.Int64
	failed  atomic.Int64
}

func (c *entityCounter) report() EntityReport {
	return EntityReport{
		Scanned: int(c.scanned.Load()),
		Fixed:   int(c.fixed.Load()),
		Failed:  int(c.failed.Load()),
	}
}

type reconcileRun struct {
	opts     ReconcileOptions
	log      *zap.SugaredLogger
	products entityCounter
	profiles entityCounter
	users    entityCounter
}

// Reconcile 执行一次修复。单条记录写入失败只计数并记录日志，不会中断扫描；
// 只有读取批次失败或 ctx 取消才返回错误，此时报告包含已完成部分。
func (s *ReconcileService) Reconcile(ctx context.Context, opts ReconcileOptions) (*ReconciliationReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Trigger = normalizeTrigger(opts.Trigger)
	if opts.BatchSize <= 0 {
		opts.BatchSize = s.batchSize
	}
	opts.BatchSize = normalizeBatchSize(opts.BatchSize)
	if opts.Workers <= 0 {
		opts.Workers = s.workers
	}
	opts.Workers = normalizeWorkers(opts.Workers)

	run := &reconcileRun{
		opts: opts,
		log: logger.FromContext(ctx).With(
			"component", "reconciler",
			"trigger", opts.Trigger,
			"dry_run", opts.DryRun,
		),
	}
	startedAt := time.Now()
	run.log.Infow("reconcile_started", "batch_size", opts.BatchSize, "workers", opts.Workers)

	err := s.reconcileProducts(ctx, run)
	if err == nil {
		err = s.reconcileProfiles(ctx, run)
	}

	report := &ReconciliationReport{
		Trigger:    opts.Trigger,
		DryRun:     opts.DryRun,
		Products:   run.products.report(),
		Profiles:   run.profiles.report(),
		Users:      run.users.report(),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	s.saveRun(run, report)

	fields := []interface{}{
		"run_id", report.RunID,
		"products_scanned", report.Products.Scanned,
		"products_fixed", report.Products.Fixed,
		"products_failed", report.Products.Failed,
		"profiles_scanned", report.Profiles.Scanned,
		"profiles_fixed", report.Profiles.Fixed,
		"profiles_failed", report.Profiles.Failed,
		"users_fixed", report.Users.Fixed,
		"users_failed", report.Users.Failed,
		"duration", report.FinishedAt.Sub(startedAt),
	}
	if err != nil {
		run.log.Errorw("reconcile_aborted", append(fields, "error", err)...)
		return report, err
	}
	run.log.Infow("reconcile_finished", fields...)
	return report, nil
}

// ListRuns 修复运行记录
func (s *ReconcileService) ListRuns(trigger string, page, pageSize int) ([]models.ReconcileRun, int64, error) {
	if s.runRepo == nil {
		return []models.ReconcileRun{}, 0, nil
	}
	return s.runRepo.List(repository.ReconcileRunListFilter{
		Page:     page,
		PageSize: pageSize,
		Trigger:  strings.TrimSpace(trigger),
	})
}

func (s *ReconcileService) reconcileProducts(ctx context.Context, run *reconcileRun) error {
	var afterID uint
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := s.productRepo.ScanApprovalFields(afterID, run.opts.BatchSize)
		if err != nil {
			return persistErr("scan", "product", afterID, err)
		}
		if len(rows) == 0 {
			return nil
		}
		afterID = rows[len(rows)-1].ID

		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(run.opts.Workers)
		for _, row := range rows {
			row := row
			g.Go(func() error {
				s.repairProduct(run, row)
				return nil
			})
		}
		_ = g.Wait()

		if len(rows) < run.opts.BatchSize {
			return nil
		}
	}
}

func (s *ReconcileService) repairProduct(run *reconcileRun, row repository.ProductApprovalRow) {
	run.products.scanned.Add(1)
	flags := approval.ProductFlags{
		Status:   approval.ProductStatus(row.Status),
		Approved: row.Approved,
		Verified: row.Verified,
	}
	if !approval.ProductNeedsRepair(flags) {
		return
	}
	if run.opts.DryRun {
		run.products.fixed.Add(1)
		run.log.Debugw("reconcile_product_would_fix", "product_id", row.ID)
		return
	}
	affected, err := s.productRepo.MarkApprovedVerified(row.ID)
	if err != nil {
		run.products.failed.Add(1)
		run.log.Errorw("reconcile_record_failed",
			"entity", "product",
			"product_id", row.ID,
			"error", persistErr("repair", "product", row.ID, err),
		)
		return
	}
	if affected == 0 {
		// 扫描后状态被管理员改走，按当前值处理
		run.log.Debugw("reconcile_product_skipped", "product_id", row.ID)
		return
	}
	run.products.fixed.Add(1)
	run.log.Infow("reconcile_product_fixed", "product_id", row.ID, "seller_id", row.SellerID)
}

func (s *ReconcileService) reconcileProfiles(ctx context.Context, run *reconcileRun) error {
	var afterID uint
	var activated []string
	defer func() {
		if len(activated) == 0 {
			return
		}
		if err := cache.InvalidateShopSnapshot(ctx, activated...); err != nil {
			run.log.Warnw("shop_cache_invalidate_failed", "count", len(activated), "error", err)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := s.profileRepo.ScanActivationCandidates(afterID, run.opts.BatchSize)
		if err != nil {
			return persistErr("scan", "seller_profile", afterID, err)
		}
		if len(rows) == 0 {
			return nil
		}
		afterID = rows[len(rows)-1].ProfileID

		slugs := make([]string, len(rows))
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(run.opts.Workers)
		for i, row := range rows {
			i, row := i, row
			g.Go(func() error {
				if s.repairProfile(run, row) {
					slugs[i] = row.ShopSlug
				}
				s.repairOwnerRole(run, row)
				return nil
			})
		}
		_ = g.Wait()
		for _, slug := range slugs {
			if slug != "" {
				activated = append(activated, slug)
			}
		}

		if len(rows) < run.opts.BatchSize {
			return nil
		}
	}
}

// repairProfile 返回店铺是否被实际激活
func (s *ReconcileService) repairProfile(run *reconcileRun, row repository.ActivationCandidate) bool {
	run.profiles.scanned.Add(1)
	state := approval.ShopState{
		Status:              approval.ShopStatus(row.Status),
		OnboardingCompleted: row.OnboardingCompleted,
	}
	if !s.engine.NeedsActivation(state, approval.UserRole(row.OwnerRole)) {
		return false
	}
	if run.opts.DryRun {
		run.profiles.fixed.Add(1)
		run.log.Debugw("reconcile_profile_would_fix", "profile_id", row.ProfileID)
		return false
	}
	affected, err := s.profileRepo.ActivateIfInactive(row.ProfileID, s.engine.ReactivateSuspended)
	if err != nil {
		run.profiles.failed.Add(1)
		run.log.Errorw("reconcile_record_failed",
			"entity", "seller_profile",
			"profile_id", row.ProfileID,
			"error", persistErr("repair", "seller_profile", row.ProfileID, err),
		)
		return false
	}
	if affected == 0 {
		run.log.Debugw("reconcile_profile_skipped", "profile_id", row.ProfileID)
		return false
	}
	run.profiles.fixed.Add(1)
	run.log.Infow("reconcile_profile_fixed", "profile_id", row.ProfileID, "user_id", row.UserID, "from_status", row.Status)
	return true
}

// repairOwnerRole 补齐入驻完成但角色未晋升的属主（补偿模式遗留）
func (s *ReconcileService) repairOwnerRole(run *reconcileRun, row repository.ActivationCandidate) {
	if row.OwnerRole == "" {
		return
	}
	run.users.scanned.Add(1)
	state := approval.ShopState{
		Status:              approval.ShopStatus(row.Status),
		OnboardingCompleted: row.OnboardingCompleted,
	}
	role := approval.UserRole(row.OwnerRole)
	if !approval.NeedsRolePromotion(state, role) {
		return
	}
	if run.opts.DryRun {
		run.users.fixed.Add(1)
		return
	}
	next, _ := approval.PromoteOnOnboarding(role)
	affected, err := s.userRepo.PromoteRole(row.UserID, role, next)
	if err != nil {
		run.users.failed.Add(1)
		run.log.Errorw("reconcile_record_failed",
			"entity", "user",
			"user_id", row.UserID,
			"error", persistErr("repair", "user", row.UserID, err),
		)
		return
	}
	if affected == 0 {
		return
	}
	run.users.fixed.Add(1)
	run.log.Infow("reconcile_user_promoted", "user_id", row.UserID, "profile_id", row.ProfileID)
}

func (s *ReconcileService) saveRun(run *reconcileRun, report *ReconciliationReport) {
	if s.runRepo == nil {
		return
	}
	record := &models.ReconcileRun{
		Trigger:         report.Trigger,
		RequestedBy:     run.opts.RequestedBy,
		DryRun:          report.DryRun,
		ProductsScanned: report.Products.Scanned,
		ProductsFixed:   report.Products.Fixed,
		ProductsFailed:  report.Products.Failed,
		ProfilesScanned: report.Profiles.Scanned,
		ProfilesFixed:   report.Profiles.Fixed,
		ProfilesFailed:  report.Profiles.Failed,
		UsersScanned:    report.Users.Scanned,
		UsersFixed:      report.Users.Fixed,
		UsersFailed:     report.Users.Failed,
		StartedAt:       report.StartedAt,
		FinishedAt:      report.FinishedAt,
	}
	if err := s.runRepo.Create(record); err != nil {
		run.log.Errorw("reconcile_run_save_failed", "error", err)
		return
	}
	report.RunID = record.ID
}

func normalizeTrigger(trigger string) string {
	switch strings.ToLower(strings.TrimSpace(trigger)) {
	case constants.ReconcileTriggerAdmin:
		return constants.ReconcileTriggerAdmin
	case constants.ReconcileTriggerQueue:
		return constants.ReconcileTriggerQueue
	case constants.ReconcileTriggerSchedule:
		return constants.ReconcileTriggerSchedule
	default:
		return constants.ReconcileTriggerCLI
	}
}

func normalizeBatchSize(size int) int {
	if size <= 0 {
		return constants.DefaultReconcileBatchSize
	}
	if size > constants.MaxReconcileBatchSize {
		return constants.MaxReconcileBatchSize
	}
	return size
}

func normalizeWorkers(workers int) int {
	if workers <= 0 {
		return constants.DefaultReconcileWorkers
	}
	return workers
}
