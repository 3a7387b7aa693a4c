package service

import (
	"errors"
	"testing"

	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"
)

func newTestAuthService(env *serviceTestEnv, username, password string) (*AuthService, *models.Admin) {
	hash, err := HashPassword(password)
	if err != nil {
		panic(err)
	}
	admin := &models.Admin{Username: username, PasswordHash: hash}
	if err := env.db.Create(admin).Error; err != nil {
		panic(err)
	}
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-admin-secret", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}
	return NewAuthService(cfg, repository.NewAdminRepository(env.db)), admin
}

func TestAdminLoginTouchesLastLogin(t *testing.T) {
	env := newServiceTestEnv(t)
	svc, admin := newTestAuthService(env, "reviewer", "review-pass-1")

	if _, _, _, err := svc.Login("reviewer", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login("ghost", "review-pass-1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown admin, got %v", err)
	}

	got, token, _, err := svc.Login("reviewer", "review-pass-1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got.LastLoginAt == nil {
		t.Fatalf("last login not set on returned admin")
	}
	claims, err := svc.ParseJWT(token)
	if err != nil || claims.AdminID != admin.ID || claims.TokenVersion != 0 {
		t.Fatalf("unexpected claims: %+v %v", claims, err)
	}

	var stored models.Admin
	if err := env.db.First(&stored, admin.ID).Error; err != nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if stored.LastLoginAt == nil {
		t.Fatalf("last login not persisted")
	}
}

func TestAdminChangePasswordBumpsTokenVersion(t *testing.T) {
	env := newServiceTestEnv(t)
	svc, admin := newTestAuthService(env, "operator", "operate-pass-1")

	if err := svc.ChangePassword(admin.ID, "nope", "operate-pass-2"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "operate-pass-1", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "operate-pass-1", "operate-pass-2"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	stored, err := svc.GetAdminByID(admin.ID)
	if err != nil {
		t.Fatalf("get admin failed: %v", err)
	}
	if stored.TokenVersion != 1 {
		t.Fatalf("token version want 1 got %d", stored.TokenVersion)
	}
	if VerifyPassword(stored.PasswordHash, "operate-pass-2") != nil {
		t.Fatalf("new password not stored")
	}
	if _, err := svc.GetAdminByID(admin.ID + 100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
