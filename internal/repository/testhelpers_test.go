package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/marketgate/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// openRepositoryTestDB 为每个测试创建独立的内存库
func openRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Role: role, Status: "active"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, sellerID uint, slug, status string, approved, verified bool) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:      sellerID,
		Slug:          slug,
		Title:         "Industrial valve " + slug,
		PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		PriceCurrency: "USD",
		MinOrderQty:   10,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	// 绕过业务层直接写入，模拟历史漂移数据
	if err := db.Model(product).Updates(map[string]interface{}{
		"status":   status,
		"approved": approved,
		"verified": verified,
	}).Error; err != nil {
		t.Fatalf("force product flags failed: %v", err)
	}
	product.Status, product.Approved, product.Verified = status, approved, verified
	return product
}

func createTestProfile(t *testing.T, db *gorm.DB, userID uint, slug, status string, onboarded bool) *models.SellerProfile {
	t.Helper()
	profile := &models.SellerProfile{UserID: userID, ShopName: slug, ShopSlug: slug}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	if err := db.Model(profile).Updates(map[string]interface{}{
		"status":               status,
		"onboarding_completed": onboarded,
	}).Error; err != nil {
		t.Fatalf("force profile state failed: %v", err)
	}
	profile.Status, profile.OnboardingCompleted = status, onboarded
	return profile
}
