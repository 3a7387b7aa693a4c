package main

import (
	"os"
	"time"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/authz"
	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const defaultSeedPassword = "Passw0rd!"

func main() {
	// 连接数据库
	config.LoadDotEnv()
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	password := os.Getenv("MG_SEED_PASSWORD")
	if password == "" {
		password = defaultSeedPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash seed password: %v", err)
	}

	// 超级管理员
	if err := models.InitDefaultAdmin(cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 角色管理员
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to init authz: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		stdLog.Fatalf("Failed to bootstrap roles: %v", err)
	}
	roleAdmins := []struct {
		Username string
		Role     string
	}{
		{Username: "auditor", Role: authz.RoleReadonlyAuditor},
		{Username: "reviewer", Role: authz.RoleReviewer},
		{Username: "seller-manager", Role: authz.RoleSellerManager},
		{Username: "operator", Role: authz.RoleOperator},
	}
	for _, item := range roleAdmins {
		var admin models.Admin
		if err := models.DB.Where("username = ?", item.Username).First(&admin).Error; err != nil {
			admin = models.Admin{Username: item.Username, PasswordHash: string(hash)}
			if err := models.DB.Create(&admin).Error; err != nil {
				stdLog.Printf("Failed to create admin %s: %v", item.Username, err)
				continue
			}
			stdLog.Printf("Created admin: %s", item.Username)
		} else {
			stdLog.Printf("Admin already exists: %s", item.Username)
		}
		if err := authzService.SetAdminRoles(admin.ID, []string{item.Role}); err != nil {
			stdLog.Printf("Failed to assign role %s to %s: %v", item.Role, item.Username, err)
		}
	}

	// 用户
	now := time.Now()
	users := []models.User{
		{Email: "buyer@example.com", DisplayName: "Demo Buyer", Role: string(approval.RoleBuyer)},
		{Email: "seller@example.com", DisplayName: "Harbor Supply", CompanyName: "Harbor Supply Co.", Role: string(approval.RoleSeller)},
		{Email: "onboarded@example.com", DisplayName: "Northwind", CompanyName: "Northwind Traders", Role: string(approval.RoleProspectiveSeller)},
		{Email: "applicant@example.com", DisplayName: "Fresh Applicant", Role: string(approval.RoleProspectiveSeller)},
	}
	userIDs := map[string]uint{}
	for _, user := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", user.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", user.Email)
			userIDs[user.Email] = existing.ID
			continue
		}
		user.PasswordHash = string(hash)
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", user.Email, err)
			continue
		}
		stdLog.Printf("Created user: %s (%s)", user.Email, user.Role)
		userIDs[user.Email] = user.ID
	}

	// 店铺资料：onboarded@ 已完成入驻但店铺仍为 pending，属主角色未晋升，供修复任务演示
	profiles := []models.SellerProfile{
		{
			UserID:                userIDs["seller@example.com"],
			ShopName:              "Harbor Supply",
			ShopSlug:              "harbor-supply",
			Description:           "Industrial fasteners and marine hardware",
			ShippingPolicy:        "Ships within 3 business days",
			PayoutMethod:          "bank_transfer",
			Status:                string(approval.ShopStatusActive),
			OnboardingCompleted:   true,
			OnboardingCompletedAt: &now,
		},
		{
			UserID:                userIDs["onboarded@example.com"],
			ShopName:              "Northwind Traders",
			ShopSlug:              "northwind-traders",
			ShippingPolicy:        "FOB Rotterdam",
			PayoutMethod:          "paypal",
			Status:                string(approval.ShopStatusPending),
			OnboardingCompleted:   true,
			OnboardingCompletedAt: &now,
		},
		{
			UserID:   userIDs["applicant@example.com"],
			ShopName: "Fresh Applicant",
			ShopSlug: "fresh-applicant",
			Status:   string(approval.ShopStatusPending),
		},
	}
	for _, profile := range profiles {
		if profile.UserID == 0 {
			continue
		}
		var existing models.SellerProfile
		if err := models.DB.Where("user_id = ?", profile.UserID).First(&existing).Error; err == nil {
			stdLog.Printf("Seller profile already exists: %s", existing.ShopSlug)
			continue
		}
		if err := models.DB.Create(&profile).Error; err != nil {
			stdLog.Printf("Failed to create seller profile %s: %v", profile.ShopSlug, err)
			continue
		}
		stdLog.Printf("Created seller profile: %s (%s)", profile.ShopSlug, profile.Status)
	}

	// 商品：覆盖各生命周期状态，含 status=approved 但字段未同步的历史数据
	sellerID := userIDs["seller@example.com"]
	products := []struct {
		Product models.Product
		Flags   approval.ProductFlags
	}{
		{
			Product: models.Product{Slug: "stainless-hex-bolts", Title: "Stainless Hex Bolts M8", Description: "A4-80 marine grade, box of 500", PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(42.50)), MinOrderQty: 10},
			Flags:   approval.FlagsFor(approval.Approved{Verified: true}),
		},
		{
			Product: models.Product{Slug: "galvanized-shackles", Title: "Galvanized Shackles 10mm", PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(3.20)), MinOrderQty: 100},
			Flags:   approval.FlagsFor(approval.Pending{}),
		},
		{
			Product: models.Product{Slug: "nylon-mooring-line", Title: "Nylon Mooring Line 50m", PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(129)), MinOrderQty: 1},
			Flags:   approval.ProductFlags{Status: approval.ProductStatusApproved},
		},
		{
			Product: models.Product{Slug: "bronze-cleats", Title: "Bronze Deck Cleats", PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(18.75)), MinOrderQty: 4},
			Flags:   approval.ProductFlags{Status: approval.ProductStatusApproved, Approved: true},
		},
		{
			Product: models.Product{Slug: "anchor-chain", Title: "Anchor Chain 8mm", PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(6.40)), MinOrderQty: 20},
			Flags:   approval.FlagsFor(approval.Hold{}),
		},
	}
	if sellerID != 0 {
		for _, item := range products {
			product := item.Product
			var existing models.Product
			if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err == nil {
				stdLog.Printf("Product already exists: %s", product.Slug)
				continue
			}
			product.SellerID = sellerID
			product.PriceCurrency = "USD"
			product.SetFlags(item.Flags)
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
				continue
			}
			stdLog.Printf("Created product: %s (status=%s approved=%v verified=%v)", product.Slug, product.Status, product.Approved, product.Verified)
		}
	}

	stdLog.Printf("Seed finished, run `go run ./cmd/reconcile -dry-run` to preview repairs")
}
