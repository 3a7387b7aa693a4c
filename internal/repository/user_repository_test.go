package repository

import (
	"testing"

	"github.com/marketgate/internal/approval"
)

func TestUserPromoteRoleOnlyFromExpectedRole(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewUserRepository(db)
	prospective := createTestUser(t, db, "p@example.com", "prospective_seller")
	buyer := createTestUser(t, db, "b@example.com", "buyer")

	affected, err := repo.PromoteRole(prospective.ID, approval.RoleProspectiveSeller, approval.RoleSeller)
	if err != nil || affected != 1 {
		t.Fatalf("promote prospective: affected=%d err=%v", affected, err)
	}
	affected, err = repo.PromoteRole(buyer.ID, approval.RoleProspectiveSeller, approval.RoleSeller)
	if err != nil || affected != 0 {
		t.Fatalf("buyer must not be promoted: affected=%d err=%v", affected, err)
	}

	got, _ := repo.GetByID(prospective.ID)
	if got.UserRole() != approval.RoleSeller {
		t.Fatalf("role want seller got %s", got.Role)
	}
}

func TestUserUpdateStatusDisableBumpsTokenVersion(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewUserRepository(db)
	user := createTestUser(t, db, "u@example.com", "buyer")

	affected, err := repo.UpdateStatus(user.ID, "disabled")
	if err != nil || affected != 1 {
		t.Fatalf("update status failed: affected=%d err=%v", affected, err)
	}
	if affected, _ := repo.UpdateStatus(9999, "disabled"); affected != 0 {
		t.Fatalf("missing user should affect no rows, got %d", affected)
	}
	got, _ := repo.GetByID(user.ID)
	if got.Status != "disabled" || got.TokenVersion != 1 {
		t.Fatalf("unexpected user after disable: status=%s version=%d", got.Status, got.TokenVersion)
	}

	if _, err := repo.UpdateStatus(user.ID, "active"); err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	got, _ = repo.GetByID(user.ID)
	if got.Status != "active" || got.TokenVersion != 1 {
		t.Fatalf("reactivation must keep token version: status=%s version=%d", got.Status, got.TokenVersion)
	}
}

func TestUserListByRoleAndKeyword(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewUserRepository(db)
	createTestUser(t, db, "alice@acme.com", "seller")
	createTestUser(t, db, "bob@acme.com", "buyer")
	createTestUser(t, db, "carol@other.com", "seller")

	items, total, err := repo.List(UserListFilter{Keyword: "acme", Role: "seller"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || items[0].Email != "alice@acme.com" {
		t.Fatalf("unexpected list result: %+v", items)
	}
}
