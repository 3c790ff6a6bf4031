package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/domain"
	"github.com/MorseWayne/pet_catalog/internal/kvstore"
)

func newCartFixture(t *testing.T) (CartService, AnalyticsService, *mockCatalogRepo) {
	t.Helper()
	lg := zap.NewNop()
	kv := kvstore.NewMemoryStore()
	repo := newMockCatalogRepo()
	catalog := NewCatalogService(repo)
	analytics := NewAnalyticsService(kv, time.Minute, lg)
	cart := NewCartService(catalog, analytics, kv, time.Minute, lg)

	repo.push([]*domain.Product{
		{
			ID:       "p1",
			Name:     "Ração Premium",
			Price:    100,
			ImageURL: "https://img.example/p1.png",
			Sizes:    []domain.SizeOption{{Name: "x", Price: 60}, {Name: "M", Price: 80}},
			Colors:   []domain.ColorOption{{Name: "Azul", ImageURL: "https://img.example/azul.png"}},
		},
		{ID: "p2", Name: "Coleira", Price: 25},
	})
	return cart, analytics, repo
}

func TestCartService_EmptyCartForUnknownSession(t *testing.T) {
	cart, _, _ := newCartFixture(t)
	got := cart.Cart(context.Background(), "nobody")
	if len(got.Items) != 0 || got.Total() != 0 {
		t.Errorf("Cart() = %+v, want empty", got)
	}
}

func TestCartService_AddToCart(t *testing.T) {
	cart, _, _ := newCartFixture(t)
	ctx := context.Background()

	got, err := cart.AddToCart(ctx, "s1", "p1", "x", "Azul")
	if err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(got.Items))
	}
	item := got.Items[0]
	if item.CartItemID != "p1-x-Azul" {
		t.Errorf("cartItemId = %s, want p1-x-Azul", item.CartItemID)
	}
	if item.Price != 60 {
		t.Errorf("price = %v, want size variant price 60", item.Price)
	}
	if item.ImageURL != "https://img.example/azul.png" {
		t.Errorf("imageURL = %v, want color variant image", item.ImageURL)
	}

	// Same variant again merges; cart survives the round trip through the store.
	got, err = cart.AddToCart(ctx, "s1", "p1", "x", "Azul")
	if err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Errorf("after merge: %+v", got.Items)
	}

	reloaded := cart.Cart(ctx, "s1")
	if len(reloaded.Items) != 1 || reloaded.Items[0].Quantity != 2 {
		t.Errorf("reloaded cart = %+v", reloaded.Items)
	}
}

func TestCartService_AddToCartErrors(t *testing.T) {
	cart, _, _ := newCartFixture(t)
	ctx := context.Background()

	if _, err := cart.AddToCart(ctx, "s1", "ghost", "", ""); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("unknown product error = %v, want ErrProductNotFound", err)
	}
	if _, err := cart.AddToCart(ctx, "s1", "p1", "", "Verde"); !errors.Is(err, ErrUnknownColor) {
		t.Errorf("unknown color error = %v, want ErrUnknownColor", err)
	}
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	cart, _, _ := newCartFixture(t)
	ctx := context.Background()

	if _, err := cart.AddToCart(ctx, "s1", "p2", "", ""); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}

	other := cart.Cart(ctx, "s2")
	if len(other.Items) != 0 {
		t.Errorf("session s2 cart = %+v, want empty", other.Items)
	}
}

func TestCartService_UpdateQuantityAndRemove(t *testing.T) {
	cart, _, _ := newCartFixture(t)
	ctx := context.Background()

	if _, err := cart.AddToCart(ctx, "s1", "p2", "", ""); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	id := domain.CartItemID("p2", "", "")

	got := cart.UpdateQuantity(ctx, "s1", id, 4)
	if got.Items[0].Quantity != 4 {
		t.Errorf("quantity = %d, want 4", got.Items[0].Quantity)
	}
	if got.Total() != 100 {
		t.Errorf("total = %v, want 100", got.Total())
	}

	// Zero quantity removes the line entirely.
	got = cart.UpdateQuantity(ctx, "s1", id, 0)
	if len(got.Items) != 0 {
		t.Errorf("items after zero quantity = %+v, want none", got.Items)
	}

	// Removing a missing line is a no-op, not an error.
	got = cart.RemoveFromCart(ctx, "s1", "ghost-line")
	if len(got.Items) != 0 {
		t.Errorf("items = %+v", got.Items)
	}
}

func TestCartService_ClearCart(t *testing.T) {
	cart, _, _ := newCartFixture(t)
	ctx := context.Background()

	if _, err := cart.AddToCart(ctx, "s1", "p2", "", ""); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	cart.ClearCart(ctx, "s1")

	if got := cart.Cart(ctx, "s1"); len(got.Items) != 0 {
		t.Errorf("cart after clear = %+v, want empty", got.Items)
	}
}

func TestCartService_AddToCartFeedsAnalytics(t *testing.T) {
	cart, analytics, _ := newCartFixture(t)
	ctx := context.Background()

	if _, err := cart.AddToCart(ctx, "s1", "p1", "M", ""); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	if _, err := cart.AddToCart(ctx, "s2", "p1", "M", ""); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}

	stats := analytics.Dashboard(ctx)
	if stats.SessionsWithCartItems != 2 {
		t.Errorf("sessionsWithCartItems = %d, want 2", stats.SessionsWithCartItems)
	}
	if len(stats.TopProducts) != 1 || stats.TopProducts[0].AddedToCart != 2 {
		t.Errorf("topProducts = %+v", stats.TopProducts)
	}
}
