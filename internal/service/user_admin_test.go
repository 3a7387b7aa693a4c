package service

import (
	"context"
	"errors"
	"testing"
)

func TestSetUserStatusDisablesAndRevokesTokens(t *testing.T) {
	env := newServiceTestEnv(t)
	svc := newTestUserAuthService(env)
	user, token, _, err := svc.Register(RegisterInput{Email: "ops@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}

	got, err := svc.SetUserStatus(context.Background(), user.ID, " Disabled ")
	if err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if got.Status != "disabled" || got.TokenVersion <= claims.TokenVersion {
		t.Fatalf("unexpected user after disable: status=%s version=%d", got.Status, got.TokenVersion)
	}
	if _, _, _, err := svc.Login("ops@example.com", "secret123"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}

	if _, err := svc.SetUserStatus(context.Background(), user.ID, "active"); err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	if _, _, _, err := svc.Login("ops@example.com", "secret123"); err != nil {
		t.Fatalf("login after enable failed: %v", err)
	}
}

func TestSetUserStatusRejectsBadInput(t *testing.T) {
	env := newServiceTestEnv(t)
	svc := newTestUserAuthService(env)
	user := env.createUser(t, "buyer@example.com", "buyer")

	if _, err := svc.SetUserStatus(context.Background(), user.ID, "banned"); !errors.Is(err, ErrInvalidUserStatus) {
		t.Fatalf("expected ErrInvalidUserStatus, got %v", err)
	}
	if _, err := svc.SetUserStatus(context.Background(), 9999, "disabled"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsersFilters(t *testing.T) {
	env := newServiceTestEnv(t)
	svc := newTestUserAuthService(env)
	env.createUser(t, "alice@acme.com", "seller")
	env.createUser(t, "bob@acme.com", "buyer")
	env.createUser(t, "carol@other.com", "seller")

	users, total, err := svc.ListUsers(AdminUserFilter{Keyword: " acme ", Role: "seller", Status: "ACTIVE"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].Email != "alice@acme.com" {
		t.Fatalf("unexpected users: total=%d %+v", total, users)
	}
	if _, _, err := svc.ListUsers(AdminUserFilter{Status: "gone"}); !errors.Is(err, ErrInvalidUserStatus) {
		t.Fatalf("expected ErrInvalidUserStatus, got %v", err)
	}
}
