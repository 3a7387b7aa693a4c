package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"

	"gorm.io/gorm"
)

type failingRoleUserRepo struct {
	*repository.GormUserRepository
}

func (r *failingRoleUserRepo) UpdateRole(id uint, role approval.UserRole) error {
	return errors.New("role write failed")
}

func (r *failingRoleUserRepo) WithTx(tx *gorm.DB) repository.UserRepository {
	inner := r.GormUserRepository.WithTx(tx).(*repository.GormUserRepository)
	return &failingRoleUserRepo{GormUserRepository: inner}
}

// revertFailProfileRepo 第一次写状态成功，之后全部失败
type revertFailProfileRepo struct {
	*repository.GormSellerProfileRepository
	calls int
}

func (r *revertFailProfileRepo) UpdateState(profile *models.SellerProfile) error {
	r.calls++
	if r.calls > 1 {
		return errors.New("revert failed")
	}
	return r.GormSellerProfileRepository.UpdateState(profile)
}

var onboardingNow = time.Date(2026, 5, 20, 8, 30, 0, 0, time.UTC)

func newTestProfileService(profileRepo repository.SellerProfileRepository, userRepo repository.UserRepository, cfg config.ApprovalConfig) *SellerProfileService {
	cfg.Normalize()
	svc := NewSellerProfileService(profileRepo, userRepo, cfg)
	svc.now = func() time.Time { return onboardingNow }
	return svc
}

func TestCompleteOnboardingActivatesProspectiveSeller(t *testing.T) {
	for _, mode := range []string{constants.ActivationModeTransaction, constants.ActivationModeCompensate} {
		t.Run(mode, func(t *testing.T) {
			env := newServiceTestEnv(t)
			user := env.createUser(t, "p@example.com", "prospective_seller")
			profile := env.forceProfile(t, user.ID, "acme", "pending", false)
			svc := newTestProfileService(env.profileRepo, env.userRepo, config.ApprovalConfig{ActivationMode: mode})

			got, err := svc.CompleteOnboarding(context.Background(), user.ID)
			if err != nil {
				t.Fatalf("complete onboarding failed: %v", err)
			}
			if got.Status != "active" || !got.OnboardingCompleted {
				t.Fatalf("unexpected profile: %+v", got)
			}
			stored := env.reloadProfile(t, profile.ID)
			if stored.Status != "active" || !stored.OnboardingCompleted || stored.OnboardingCompletedAt == nil {
				t.Fatalf("profile not persisted: %+v", stored)
			}
			if !stored.OnboardingCompletedAt.Equal(onboardingNow) {
				t.Fatalf("unexpected completed at: %v", stored.OnboardingCompletedAt)
			}
			if role := env.reloadUser(t, user.ID).Role; role != "seller" {
				t.Fatalf("role should be seller, got %s", role)
			}
		})
	}
}

func TestCompleteOnboardingRequiresShopDetails(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "p@example.com", "prospective_seller")
	profile := env.forceProfile(t, user.ID, "acme", "pending", false)
	if err := env.db.Model(profile).Update("payout_method", "").Error; err != nil {
		t.Fatalf("clear payout method failed: %v", err)
	}
	svc := newTestProfileService(env.profileRepo, env.userRepo, config.ApprovalConfig{})

	if _, err := svc.CompleteOnboarding(context.Background(), user.ID); !errors.Is(err, ErrOnboardingIncomplete) {
		t.Fatalf("expected ErrOnboardingIncomplete, got %v", err)
	}
	if got := env.reloadProfile(t, profile.ID); got.OnboardingCompleted || got.Status != "pending" {
		t.Fatalf("profile changed: %+v", got)
	}
}

func TestCompleteOnboardingTransactionRollsBack(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "p@example.com", "prospective_seller")
	profile := env.forceProfile(t, user.ID, "acme", "pending", false)
	svc := newTestProfileService(env.profileRepo, &failingRoleUserRepo{env.userRepo}, config.ApprovalConfig{
		ActivationMode: constants.ActivationModeTransaction,
	})

	_, err := svc.CompleteOnboarding(context.Background(), user.ID)
	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Entity != "user" {
		t.Fatalf("expected user persistence error, got %v", err)
	}
	stored := env.reloadProfile(t, profile.ID)
	if stored.Status != "pending" || stored.OnboardingCompleted || stored.OnboardingCompletedAt != nil {
		t.Fatalf("profile should be rolled back: %+v", stored)
	}
	if role := env.reloadUser(t, user.ID).Role; role != "prospective_seller" {
		t.Fatalf("role should be unchanged, got %s", role)
	}
}

func TestCompleteOnboardingCompensateRevertsProfile(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "p@example.com", "prospective_seller")
	profile := env.forceProfile(t, user.ID, "acme", "pending", false)
	svc := newTestProfileService(env.profileRepo, &failingRoleUserRepo{env.userRepo}, config.ApprovalConfig{
		ActivationMode: constants.ActivationModeCompensate,
	})

	_, err := svc.CompleteOnboarding(context.Background(), user.ID)
	var partial *PartialActivationError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialActivationError, got %v", err)
	}
	if !partial.Compensated() {
		t.Fatalf("compensation should succeed: %+v", partial)
	}
	stored := env.reloadProfile(t, profile.ID)
	if stored.Status != "pending" || stored.OnboardingCompleted || stored.OnboardingCompletedAt != nil {
		t.Fatalf("profile should be reverted: %+v", stored)
	}
}

func TestCompleteOnboardingCompensationFailureIsRepairable(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "p@example.com", "prospective_seller")
	profile := env.forceProfile(t, user.ID, "acme", "pending", false)
	profileRepo := &revertFailProfileRepo{GormSellerProfileRepository: env.profileRepo}
	svc := newTestProfileService(profileRepo, &failingRoleUserRepo{env.userRepo}, config.ApprovalConfig{
		ActivationMode: constants.ActivationModeCompensate,
	})

	_, err := svc.CompleteOnboarding(context.Background(), user.ID)
	var partial *PartialActivationError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialActivationError, got %v", err)
	}
	if !partial.ProfileActivated || partial.RolePromoted || partial.Compensated() {
		t.Fatalf("unexpected partial state: %+v", partial)
	}
	if got := env.reloadProfile(t, profile.ID); got.Status != "active" || !got.OnboardingCompleted {
		t.Fatalf("profile should remain activated: %+v", got)
	}

	report, err := env.reconciler(false).Reconcile(context.Background(), ReconcileOptions{})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if report.Users.Fixed != 1 {
		t.Fatalf("reconciler should promote the owner: %+v", report.Users)
	}
	if role := env.reloadUser(t, user.ID).Role; role != "seller" {
		t.Fatalf("role should be seller after reconcile, got %s", role)
	}
}

func TestCompleteOnboardingSuspendedShopPolicy(t *testing.T) {
	cases := []struct {
		name       string
		reactivate bool
		want       string
	}{
		{name: "keep suspension", reactivate: false, want: "suspended"},
		{name: "reactivate", reactivate: true, want: "active"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newServiceTestEnv(t)
			user := env.createUser(t, "s@example.com", "seller")
			profile := env.forceProfile(t, user.ID, "acme", "suspended", false)
			svc := newTestProfileService(env.profileRepo, env.userRepo, config.ApprovalConfig{OnboardingReactivatesSuspended: tc.reactivate})

			if _, err := svc.CompleteOnboarding(context.Background(), user.ID); err != nil {
				t.Fatalf("complete onboarding failed: %v", err)
			}
			got := env.reloadProfile(t, profile.ID)
			if got.Status != tc.want || !got.OnboardingCompleted {
				t.Fatalf("want status %s, got %+v", tc.want, got)
			}
		})
	}
}

func TestSetStatusAppendsNoteEveryTime(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "s@example.com", "seller")
	profile := env.forceProfile(t, user.ID, "acme", "active", true)
	svc := newTestProfileService(env.profileRepo, env.userRepo, config.ApprovalConfig{})
	ctx := context.Background()

	updated, note, err := svc.SetStatus(ctx, user.ID, "suspended", "  chargeback review ", 3)
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if updated.Status != "suspended" || note.Note != "chargeback review" || note.ChangedBy != 3 {
		t.Fatalf("unexpected result: %+v %+v", updated, note)
	}
	if _, _, err := svc.SetStatus(ctx, user.ID, "suspended", "", 4); err != nil {
		t.Fatalf("repeat set status failed: %v", err)
	}

	notes, err := svc.ListStatusNotes(user.ID)
	if err != nil {
		t.Fatalf("list notes failed: %v", err)
	}
	if len(notes) != 2 || notes[0].ChangedBy != 3 || notes[1].ChangedBy != 4 {
		t.Fatalf("unexpected notes: %+v", notes)
	}
	if got := env.reloadProfile(t, profile.ID); got.Status != "suspended" || !got.OnboardingCompleted {
		t.Fatalf("unexpected stored profile: %+v", got)
	}

	if _, _, err := svc.SetStatus(ctx, user.ID, "closed", "", 3); !errors.Is(err, approval.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if notes, _ := svc.ListStatusNotes(user.ID); len(notes) != 2 {
		t.Fatalf("invalid status must not append a note")
	}
}

func TestGetPublicShopOnlyReachable(t *testing.T) {
	env := newServiceTestEnv(t)
	active := env.createUser(t, "a@example.com", "seller")
	pending := env.createUser(t, "p@example.com", "prospective_seller")
	env.forceProfile(t, active.ID, "open-shop", "active", true)
	env.forceProfile(t, pending.ID, "closed-shop", "pending", false)
	svc := newTestProfileService(env.profileRepo, env.userRepo, config.ApprovalConfig{})

	snap, err := svc.GetPublicShop(context.Background(), " Open-Shop ")
	if err != nil {
		t.Fatalf("get public shop failed: %v", err)
	}
	if snap.UserID != active.ID || snap.ShopSlug != "open-shop" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if _, err := svc.GetPublicShop(context.Background(), "closed-shop"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pending shop should be hidden, got %v", err)
	}
	if _, err := svc.GetPublicShop(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing shop should be not found, got %v", err)
	}
}

func TestGetOrCreateProfile(t *testing.T) {
	env := newServiceTestEnv(t)
	buyer := env.createUser(t, "buyer@example.com", "buyer")
	first := env.createUser(t, "first@example.com", "prospective_seller")
	second := env.createUser(t, "second@example.com", "prospective_seller")
	for _, u := range []*models.User{first, second} {
		if err := env.db.Model(u).Update("company_name", "Acme Metals").Error; err != nil {
			t.Fatalf("set company failed: %v", err)
		}
	}
	svc := newTestProfileService(env.profileRepo, env.userRepo, config.ApprovalConfig{})

	if _, err := svc.GetOrCreate(buyer.ID); !errors.Is(err, ErrNotSeller) {
		t.Fatalf("buyer should be rejected, got %v", err)
	}
	a, err := svc.GetOrCreate(first.ID)
	if err != nil {
		t.Fatalf("create first profile failed: %v", err)
	}
	if a.Status != "pending" || a.OnboardingCompleted || a.ShopSlug != "acme-metals" {
		t.Fatalf("unexpected profile: %+v", a)
	}
	again, err := svc.GetOrCreate(first.ID)
	if err != nil || again.ID != a.ID {
		t.Fatalf("second call should return same profile: %+v %v", again, err)
	}
	b, err := svc.GetOrCreate(second.ID)
	if err != nil {
		t.Fatalf("create second profile failed: %v", err)
	}
	if b.ShopSlug == a.ShopSlug {
		t.Fatalf("shop slugs must be unique: %s", b.ShopSlug)
	}
}

func TestGetOrCreateProfileFallsBackToEmailLocalPart(t *testing.T) {
	env := newServiceTestEnv(t)
	user := &models.User{Email: "steelworks@example.com", PasswordHash: "x", Role: "prospective_seller", Status: "active"}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	svc := newTestProfileService(env.profileRepo, env.userRepo, config.ApprovalConfig{})

	profile, err := svc.GetOrCreate(user.ID)
	if err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	if profile.ShopName != "steelworks" || profile.ShopSlug != "steelworks" {
		t.Fatalf("shop name should come from email: %+v", profile)
	}
}

func TestUpdateProfileSlugConflictAndCompletion(t *testing.T) {
	env := newServiceTestEnv(t)
	owner := env.createUser(t, "a@example.com", "seller")
	other := env.createUser(t, "b@example.com", "prospective_seller")
	env.forceProfile(t, owner.ID, "taken", "active", true)
	profile := env.forceProfile(t, other.ID, "mine", "pending", false)
	svc := newTestProfileService(env.profileRepo, env.userRepo, config.ApprovalConfig{})
	ctx := context.Background()

	taken := "Taken"
	if _, err := svc.UpdateProfile(ctx, other.ID, UpdateSellerProfileInput{ShopSlug: &taken}); !errors.Is(err, ErrShopSlugExists) {
		t.Fatalf("expected ErrShopSlugExists, got %v", err)
	}
	blank := "!!!"
	if _, err := svc.UpdateProfile(ctx, other.ID, UpdateSellerProfileInput{ShopSlug: &blank}); !errors.Is(err, ErrShopSlugInvalid) {
		t.Fatalf("expected ErrShopSlugInvalid, got %v", err)
	}

	name := "Nordic Fasteners"
	slug := "nordic-fasteners"
	updated, err := svc.UpdateProfile(ctx, other.ID, UpdateSellerProfileInput{
		ShopName:           &name,
		ShopSlug:           &slug,
		CompleteOnboarding: true,
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.ShopName != name || updated.ShopSlug != slug || updated.Status != "active" {
		t.Fatalf("unexpected profile: %+v", updated)
	}
	stored := env.reloadProfile(t, profile.ID)
	if stored.ShopSlug != slug || stored.Status != "active" {
		t.Fatalf("unexpected stored profile: %+v", stored)
	}
}
