package service

import (
	"errors"
	"testing"

	"github.com/marketgate/internal/approval"

	"github.com/shopspring/decimal"
)

func newTestProductService(env *serviceTestEnv) *ProductService {
	return NewProductService(env.productRepo, env.userRepo)
}

func validProductInput(title string) ProductInput {
	return ProductInput{
		Title:       title,
		Description: "Grade 304, 2mm wall",
		PriceAmount: decimal.RequireFromString("12.50"),
		MinOrderQty: 100,
	}
}

func TestCreateForSellerStartsPending(t *testing.T) {
	env := newServiceTestEnv(t)
	seller := env.createUser(t, "s@example.com", "prospective_seller")
	svc := newTestProductService(env)

	product, err := svc.CreateForSeller(seller.ID, validProductInput("Stainless Tube"))
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.Status != "pending" || product.Approved || product.Verified {
		t.Fatalf("new product must be pending: %+v", product)
	}
	if product.Slug != "stainless-tube" || product.PriceCurrency != "USD" {
		t.Fatalf("unexpected defaults: %+v", product)
	}

	dup, err := svc.CreateForSeller(seller.ID, validProductInput("Stainless Tube"))
	if err != nil {
		t.Fatalf("create duplicate title failed: %v", err)
	}
	if dup.Slug != "stainless-tube-2" {
		t.Fatalf("expected suffixed slug, got %s", dup.Slug)
	}
}

func TestCreateForSellerValidation(t *testing.T) {
	env := newServiceTestEnv(t)
	seller := env.createUser(t, "s@example.com", "seller")
	buyer := env.createUser(t, "b@example.com", "buyer")
	svc := newTestProductService(env)

	if _, err := svc.CreateForSeller(buyer.ID, validProductInput("Valve")); !errors.Is(err, ErrNotSeller) {
		t.Fatalf("buyer should be rejected, got %v", err)
	}
	cases := []struct {
		name   string
		mutate func(*ProductInput)
		want   error
	}{
		{name: "blank title", mutate: func(in *ProductInput) { in.Title = "  " }, want: ErrProductTitleInvalid},
		{name: "zero price", mutate: func(in *ProductInput) { in.PriceAmount = decimal.Zero }, want: ErrProductPriceInvalid},
		{name: "rounded to zero", mutate: func(in *ProductInput) { in.PriceAmount = decimal.RequireFromString("0.001") }, want: ErrProductPriceInvalid},
		{name: "negative moq", mutate: func(in *ProductInput) { in.MinOrderQty = -5 }, want: ErrProductMOQInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validProductInput("Valve")
			tc.mutate(&input)
			if _, err := svc.CreateForSeller(seller.ID, input); !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
		})
	}
}

func TestApproveMakesProductPublic(t *testing.T) {
	env := newServiceTestEnv(t)
	seller := env.createUser(t, "s@example.com", "seller")
	svc := newTestProductService(env)
	product, err := svc.CreateForSeller(seller.ID, validProductInput("Copper Wire"))
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	if _, err := svc.GetPublicBySlug(product.Slug); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pending product must be hidden, got %v", err)
	}
	approved, err := svc.Approve(product.ID, 1)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != "approved" || !approved.Approved || !approved.Verified {
		t.Fatalf("unexpected flags: %+v", approved)
	}
	if _, err := svc.GetPublicBySlug(product.Slug); err != nil {
		t.Fatalf("approved product should be public: %v", err)
	}
	items, total, err := svc.ListPublic("copper", 1, 20)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("public list mismatch: total=%d err=%v", total, err)
	}
}

func TestSetStatusKeepsFlagsConsistent(t *testing.T) {
	env := newServiceTestEnv(t)
	seller := env.createUser(t, "s@example.com", "seller")
	svc := newTestProductService(env)
	product, err := svc.CreateForSeller(seller.ID, validProductInput("Copper Wire"))
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := svc.Approve(product.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	disabled, err := svc.SetStatus(product.ID, "Disabled", 1)
	if err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if disabled.Status != "disabled" || disabled.Approved || disabled.Verified {
		t.Fatalf("unexpected flags after disable: %+v", disabled)
	}
	stored := env.reloadProduct(t, product.ID)
	if stored.Approved || stored.Verified || !stored.Flags().Consistent() {
		t.Fatalf("stored flags inconsistent: %+v", stored)
	}

	reapproved, err := svc.SetStatus(product.ID, "approved", 1)
	if err != nil {
		t.Fatalf("set approved failed: %v", err)
	}
	if !reapproved.PubliclyVisible() {
		t.Fatalf("status approved should restore public visibility")
	}

	if _, err := svc.SetStatus(product.ID, "bogus", 1); !errors.Is(err, approval.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if got := env.reloadProduct(t, product.ID); got.Status != "approved" {
		t.Fatalf("invalid status must not write: %+v", got)
	}

	unapproved, err := svc.Unapprove(product.ID, 1)
	if err != nil {
		t.Fatalf("unapprove failed: %v", err)
	}
	if unapproved.Status != "pending" || unapproved.Approved || unapproved.Verified {
		t.Fatalf("unexpected flags after unapprove: %+v", unapproved)
	}
	if _, err := svc.Approve(9999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing product should be not found, got %v", err)
	}
}

func TestSellerEditDoesNotTouchApproval(t *testing.T) {
	env := newServiceTestEnv(t)
	seller := env.createUser(t, "s@example.com", "seller")
	other := env.createUser(t, "o@example.com", "seller")
	svc := newTestProductService(env)
	product, err := svc.CreateForSeller(seller.ID, validProductInput("Copper Wire"))
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := svc.Approve(product.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	input := validProductInput("Copper Wire 2.5mm")
	input.MinOrderQty = 500
	updated, err := svc.UpdateForSeller(seller.ID, product.ID, input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "Copper Wire 2.5mm" || updated.MinOrderQty != 500 {
		t.Fatalf("unexpected content: %+v", updated)
	}
	stored := env.reloadProduct(t, product.ID)
	if stored.Status != "approved" || !stored.Approved || !stored.Verified {
		t.Fatalf("approval flags changed by seller edit: %+v", stored)
	}

	if _, err := svc.UpdateForSeller(other.ID, product.ID, input); !errors.Is(err, ErrProductNotOwned) {
		t.Fatalf("expected ErrProductNotOwned, got %v", err)
	}
	if err := svc.DeleteForSeller(other.ID, product.ID); !errors.Is(err, ErrProductNotOwned) {
		t.Fatalf("expected ErrProductNotOwned, got %v", err)
	}
	if err := svc.DeleteForSeller(seller.ID, product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetPublicBySlug(product.Slug); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted product should be gone, got %v", err)
	}
}

func TestListShopVisibility(t *testing.T) {
	env := newServiceTestEnv(t)
	seller := env.createUser(t, "s@example.com", "seller")
	env.forceProduct(t, seller.ID, "public", "approved", true, true)
	env.forceProduct(t, seller.ID, "unverified", "approved", true, false)
	env.forceProduct(t, seller.ID, "pending", "pending", false, false)
	env.forceProduct(t, seller.ID, "disabled", "disabled", false, false)
	svc := newTestProductService(env)

	_, total, err := svc.ListShop(seller.ID, false, 1, 20)
	if err != nil || total != 2 {
		t.Fatalf("shop view should show 2 products, got %d (%v)", total, err)
	}
	_, total, err = svc.ListShop(seller.ID, true, 1, 20)
	if err != nil || total != 4 {
		t.Fatalf("preview should show all products, got %d (%v)", total, err)
	}
	_, total, err = svc.ListPublic("", 1, 20)
	if err != nil || total != 1 {
		t.Fatalf("marketplace should show 1 product, got %d (%v)", total, err)
	}
	if _, _, err := svc.ListAdmin(AdminProductFilter{Status: "bogus"}); !errors.Is(err, approval.ErrInvalidStatus) {
		t.Fatalf("admin list should reject bad status, got %v", err)
	}
	_, total, err = svc.ListAdmin(AdminProductFilter{Status: "approved"})
	if err != nil || total != 2 {
		t.Fatalf("admin approved filter should return 2, got %d (%v)", total, err)
	}
}
