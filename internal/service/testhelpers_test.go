package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db          *gorm.DB
	productRepo *repository.GormProductRepository
	profileRepo *repository.GormSellerProfileRepository
	userRepo    *repository.GormUserRepository
	runRepo     *repository.GormReconcileRunRepository
}

// newServiceTestEnv 每个测试独立内存库；单连接避免并发写入时 sqlite 表锁
func newServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return openServiceTestEnv(t, fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name), 1)
}

// newPooledServiceTestEnv 文件库 + WAL，多连接下并发读写
func newPooledServiceTestEnv(t *testing.T, conns int) *serviceTestEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "svc.db")
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	return openServiceTestEnv(t, dsn, conns)
}

func openServiceTestEnv(t *testing.T, dsn string, conns int) *serviceTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &serviceTestEnv{
		db:          db,
		productRepo: repository.NewProductRepository(db),
		profileRepo: repository.NewSellerProfileRepository(db),
		userRepo:    repository.NewUserRepository(db),
		runRepo:     repository.NewReconcileRunRepository(db),
	}
}

func (e *serviceTestEnv) profileService(cfg config.ApprovalConfig) *SellerProfileService {
	cfg.Normalize()
	return NewSellerProfileService(e.profileRepo, e.userRepo, cfg)
}

func (e *serviceTestEnv) reconciler(reactivateSuspended bool) *ReconcileService {
	svc := e.profileService(config.ApprovalConfig{OnboardingReactivatesSuspended: reactivateSuspended})
	return NewReconcileService(e.productRepo, e.profileRepo, e.userRepo, e.runRepo, svc.Engine(), 2, 3)
}

func (e *serviceTestEnv) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", DisplayName: strings.Split(email, "@")[0], Role: role, Status: "active"}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

// forceProduct 绕过状态机直接写入审核字段，模拟历史数据
func (e *serviceTestEnv) forceProduct(t *testing.T, sellerID uint, slug, status string, approved, verified bool) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:      sellerID,
		Slug:          slug,
		Title:         "Steel pipe " + slug,
		PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		PriceCurrency: "USD",
		MinOrderQty:   50,
	}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := e.db.Model(product).Updates(map[string]interface{}{
		"status":   status,
		"approved": approved,
		"verified": verified,
	}).Error; err != nil {
		t.Fatalf("force product flags failed: %v", err)
	}
	product.Status, product.Approved, product.Verified = status, approved, verified
	return product
}

func (e *serviceTestEnv) forceProfile(t *testing.T, userID uint, slug, status string, onboarded bool) *models.SellerProfile {
	t.Helper()
	profile := &models.SellerProfile{
		UserID:         userID,
		ShopName:       "Shop " + slug,
		ShopSlug:       slug,
		ShippingPolicy: "FOB Shanghai",
		PayoutMethod:   "bank_transfer",
	}
	if err := e.db.Create(profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	if err := e.db.Model(profile).Updates(map[string]interface{}{
		"status":               status,
		"onboarding_completed": onboarded,
	}).Error; err != nil {
		t.Fatalf("force profile state failed: %v", err)
	}
	profile.Status, profile.OnboardingCompleted = status, onboarded
	return profile
}

func (e *serviceTestEnv) reloadProduct(t *testing.T, id uint) *models.Product {
	t.Helper()
	var product models.Product
	if err := e.db.Unscoped().First(&product, id).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return &product
}

func (e *serviceTestEnv) reloadProfile(t *testing.T, id uint) *models.SellerProfile {
	t.Helper()
	var profile models.SellerProfile
	if err := e.db.First(&profile, id).Error; err != nil {
		t.Fatalf("reload profile failed: %v", err)
	}
	return &profile
}

func (e *serviceTestEnv) reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()
	var user models.User
	if err := e.db.First(&user, id).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	return &user
}
