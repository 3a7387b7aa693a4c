//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.AdminAuditLog{},
		&models.ReconcileRun{},
		&models.Product{},
		&models.SellerStatusNote{},
		&models.SellerProfile{},
		&models.User{},
		&models.Admin{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCaseInsensitiveSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	seller := createTestUser(t, db, "pg-seller@example.com", string(approval.RoleSeller))
	createTestProfile(t, db, seller.ID, "harbor-supply", string(approval.ShopStatusActive), true)
	createTestProduct(t, db, seller.ID, "pg-hex-bolts", string(approval.ProductStatusApproved), true, true)

	productRepo := NewProductRepository(db)
	rows, total, err := productRepo.List(ProductListFilter{Page: 1, Search: "HEX-BOLTS", PubliclyVisible: true})
	if err != nil {
		t.Fatalf("product search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("product search want 1 got total=%d len=%d", total, len(rows))
	}

	profileRepo := NewSellerProfileRepository(db)
	profiles, total, err := profileRepo.List(SellerProfileListFilter{Page: 1, Search: "Harbor"})
	if err != nil {
		t.Fatalf("profile search failed: %v", err)
	}
	if total != 1 || len(profiles) != 1 {
		t.Fatalf("profile search want 1 got total=%d len=%d", total, len(profiles))
	}
}

func TestPostgresApprovalRepairQueries(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	seller := createTestUser(t, db, "pg-drift@example.com", string(approval.RoleProspectiveSeller))
	profile := createTestProfile(t, db, seller.ID, "pg-drift", string(approval.ShopStatusPending), true)
	drifted := createTestProduct(t, db, seller.ID, "pg-drifted", string(approval.ProductStatusApproved), false, false)
	pending := createTestProduct(t, db, seller.ID, "pg-pending", string(approval.ProductStatusPending), false, false)

	productRepo := NewProductRepository(db)
	rows, err := productRepo.ScanApprovalFields(0, 10)
	if err != nil {
		t.Fatalf("scan approval fields failed: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != drifted.ID {
		t.Fatalf("unexpected scan rows: %+v", rows)
	}

	affected, err := productRepo.MarkApprovedVerified(drifted.ID)
	if err != nil || affected != 1 {
		t.Fatalf("mark drifted product: affected=%d err=%v", affected, err)
	}
	affected, err = productRepo.MarkApprovedVerified(pending.ID)
	if err != nil || affected != 0 {
		t.Fatalf("pending product must not be marked: affected=%d err=%v", affected, err)
	}

	profileRepo := NewSellerProfileRepository(db)
	candidates, err := profileRepo.ScanActivationCandidates(0, 10)
	if err != nil {
		t.Fatalf("scan activation candidates failed: %v", err)
	}
	if len(candidates) != 1 || candidates[0].OwnerRole != string(approval.RoleProspectiveSeller) {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}
	affected, err = profileRepo.ActivateIfInactive(profile.ID, false)
	if err != nil || affected != 1 {
		t.Fatalf("activate profile: affected=%d err=%v", affected, err)
	}
}
