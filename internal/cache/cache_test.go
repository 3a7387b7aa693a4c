package cache

import (
	"context"
	"testing"
	"time"

	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("cache should be disabled")
	}
	ctx := context.Background()
	if err := SetShopSnapshot(ctx, &ShopSnapshot{ShopSlug: "acme"}, time.Minute); err != nil {
		t.Fatalf("set on disabled cache failed: %v", err)
	}
	snapshot, hit, err := GetShopSnapshot(ctx, "acme")
	if err != nil || hit || snapshot != nil {
		t.Fatalf("disabled cache should miss, got %+v %v %v", snapshot, hit, err)
	}
	if err := InvalidateShopSnapshot(ctx, "acme", ""); err != nil {
		t.Fatalf("invalidate on disabled cache failed: %v", err)
	}
}

func TestShopSnapshotKeyNormalizesSlug(t *testing.T) {
	if got := shopSnapshotKey("  ACME-Tools "); got != "shop:slug:acme-tools" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: true, Prefix: "test"}); err != nil {
		t.Fatalf("init redis failed: %v", err)
	}
	t.Cleanup(func() { _ = InitRedis(&config.RedisConfig{Enabled: false}) })
	if !Enabled() {
		t.Fatalf("cache should be enabled")
	}
	if got := current.key("shop:slug:a"); got != "test:shop:slug:a" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := current.key(" "); got != "test" {
		t.Fatalf("blank key should map to prefix, got %s", got)
	}
}

func TestAuthStateKeys(t *testing.T) {
	if got := authStateKey("user", 7); got != "auth:user:7" {
		t.Fatalf("unexpected user key: %s", got)
	}
	ctx := context.Background()
	state, hit, err := GetAdminAuthState(ctx, 0)
	if state != nil || hit || err != nil {
		t.Fatalf("zero admin id should miss without error")
	}
}

func TestBuildAuthStates(t *testing.T) {
	user := &models.User{ID: 3, Status: "active", Role: "seller", TokenVersion: 2}
	state := BuildUserAuthState(user)
	if state.UserID != 3 || state.Role != "seller" || state.TokenVersion != 2 {
		t.Fatalf("unexpected user state: %+v", state)
	}
	if BuildUserAuthState(nil) != nil || BuildAdminAuthState(nil) != nil {
		t.Fatalf("nil models should produce nil states")
	}
	admin := BuildAdminAuthState(&models.Admin{ID: 1, Username: "root", IsSuper: true})
	if !admin.IsSuper || admin.Username != "root" {
		t.Fatalf("unexpected admin state: %+v", admin)
	}
}
