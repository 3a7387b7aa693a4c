package repository

import (
	"testing"
	"time"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/models"
)

func TestSellerProfileScanActivationCandidatesJoinsOwnerRole(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewSellerProfileRepository(db)
	prospective := createTestUser(t, db, "p@example.com", "prospective_seller")
	seller := createTestUser(t, db, "s@example.com", "seller")
	first := createTestProfile(t, db, prospective.ID, "first", "pending", true)
	second := createTestProfile(t, db, seller.ID, "second", "suspended", false)

	rows, err := repo.ScanActivationCandidates(0, 10)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows got %d", len(rows))
	}
	if rows[0].ProfileID != first.ID || rows[0].OwnerRole != "prospective_seller" || !rows[0].OnboardingCompleted {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].ProfileID != second.ID || rows[1].OwnerRole != "seller" || rows[1].Status != "suspended" || rows[1].ShopSlug != "second" {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}

	rest, err := repo.ScanActivationCandidates(second.ID, 10)
	if err != nil || len(rest) != 0 {
		t.Fatalf("scan after last id should be empty, got %d err %v", len(rest), err)
	}
}

func TestSellerProfileScanActivationCandidatesSkipsDeletedOwner(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewSellerProfileRepository(db)
	gone := createTestUser(t, db, "gone@example.com", "prospective_seller")
	kept := createTestUser(t, db, "kept@example.com", "prospective_seller")
	createTestProfile(t, db, gone.ID, "orphan", "pending", true)
	live := createTestProfile(t, db, kept.ID, "live", "pending", true)
	if err := db.Delete(gone).Error; err != nil {
		t.Fatalf("delete owner failed: %v", err)
	}

	rows, err := repo.ScanActivationCandidates(0, 10)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ProfileID != live.ID {
		t.Fatalf("orphaned shop should be skipped: %+v", rows)
	}
}

func TestSellerProfileActivateIfInactive(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewSellerProfileRepository(db)
	pending := createTestProfile(t, db, 1, "pending-shop", "pending", true)
	suspended := createTestProfile(t, db, 2, "suspended-shop", "suspended", true)
	active := createTestProfile(t, db, 3, "active-shop", "active", true)

	cases := []struct {
		name           string
		id             uint
		allowSuspended bool
		want           int64
	}{
		{name: "pending", id: pending.ID, want: 1},
		{name: "suspended protected", id: suspended.ID, want: 0},
		{name: "already active", id: active.ID, want: 0},
		{name: "suspended allowed", id: suspended.ID, allowSuspended: true, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			affected, err := repo.ActivateIfInactive(tc.id, tc.allowSuspended)
			if err != nil {
				t.Fatalf("activate failed: %v", err)
			}
			if affected != tc.want {
				t.Fatalf("affected want %d got %d", tc.want, affected)
			}
		})
	}
}

func TestSellerProfileStatusNotesAppendOnlyOrder(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewSellerProfileRepository(db)
	profile := createTestProfile(t, db, 1, "notes", "pending", false)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, status := range []approval.ShopStatus{approval.ShopStatusActive, approval.ShopStatusActive, approval.ShopStatusSuspended} {
		note := models.NewSellerStatusNote(profile.ID, approval.StatusNote{
			Status:    status,
			Note:      "note",
			ChangedBy: 9,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err := repo.AppendStatusNote(note); err != nil {
			t.Fatalf("append note failed: %v", err)
		}
	}
	notes, err := repo.ListStatusNotes(profile.ID)
	if err != nil {
		t.Fatalf("list notes failed: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("want 3 notes got %d", len(notes))
	}
	if notes[2].Status != "suspended" || notes[0].ChangedBy != 9 {
		t.Fatalf("unexpected notes: %+v", notes)
	}
}

func TestSellerProfileUpdateStateAndContent(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewSellerProfileRepository(db)
	profile := createTestProfile(t, db, 1, "state", "pending", false)

	now := time.Now()
	profile.SetState(approval.ShopEngine{}.CompleteOnboarding(profile.State()))
	profile.OnboardingCompletedAt = &now
	if err := repo.UpdateState(profile); err != nil {
		t.Fatalf("update state failed: %v", err)
	}

	profile.ShopName = "Renamed"
	profile.Status = "suspended"
	if err := repo.Update(profile); err != nil {
		t.Fatalf("update content failed: %v", err)
	}

	got, err := repo.GetByShopSlug("state")
	if err != nil || got == nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.ShopName != "Renamed" {
		t.Fatalf("shop name not updated: %s", got.ShopName)
	}
	if got.Status != "active" || !got.OnboardingCompleted || got.OnboardingCompletedAt == nil {
		t.Fatalf("state mismatch: %+v", got)
	}
}

func TestSellerProfileListFilters(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewSellerProfileRepository(db)
	createTestProfile(t, db, 1, "alpha-tools", "active", true)
	createTestProfile(t, db, 2, "beta-parts", "pending", false)
	createTestProfile(t, db, 3, "alpha-steel", "pending", true)

	onboarded := true
	items, total, err := repo.List(SellerProfileListFilter{Status: "pending", OnboardingCompleted: &onboarded})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || items[0].ShopSlug != "alpha-steel" {
		t.Fatalf("unexpected filtered list: %+v", items)
	}
	_, total, err = repo.List(SellerProfileListFilter{Search: "alpha"})
	if err != nil || total != 2 {
		t.Fatalf("search want 2 got %d err %v", total, err)
	}
}
