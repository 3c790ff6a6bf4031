package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MorseWayne/pet_catalog/internal/domain"
)

func TestCatalogService_ProductsFollowSnapshots(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo)

	if got := svc.Products(); len(got) != 0 {
		t.Fatalf("initial products = %d, want 0", len(got))
	}

	repo.push([]*domain.Product{productWithOrder("a", 0), productWithOrder("b", 1)})

	got := svc.Products()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("products after snapshot = %+v", got)
	}

	// A later snapshot fully replaces the previous one.
	repo.push([]*domain.Product{productWithOrder("c", 0)})
	got = svc.Products()
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("products after second snapshot = %+v", got)
	}
}

func TestCatalogService_ProductByID(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo)
	repo.push([]*domain.Product{productWithOrder("a", 0)})

	if _, err := svc.ProductByID("a"); err != nil {
		t.Errorf("ProductByID(a) error = %v", err)
	}
	if _, err := svc.ProductByID("zzz"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("ProductByID(zzz) error = %v, want ErrProductNotFound", err)
	}
}

func TestCatalogService_Categories(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo)

	repo.push([]*domain.Product{
		{ID: "1", Category: "Gato"},
		{ID: "2", Category: "Cachorro"},
		{ID: "3", Category: "Gato"},
		{ID: "4", Category: ""},
	})

	got := svc.Categories()
	want := []string{"Cachorro", "Gato"}
	if len(got) != len(want) {
		t.Fatalf("categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("categories[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCatalogService_AddProductComputesOrder(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo)
	repo.push([]*domain.Product{productWithOrder("a", 3), {ID: "b", Order: nil}})

	svc.AddProduct(context.Background(), &domain.CreateProductRequest{Name: "new"})

	if len(repo.addedOrders) != 1 || repo.addedOrders[0] != 4 {
		t.Errorf("added order = %v, want [4]", repo.addedOrders)
	}
}

func TestCatalogService_UpdateProductsOrder(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo)
	repo.push([]*domain.Product{productWithOrder("a", 0), productWithOrder("b", 1)})

	if err := svc.UpdateProductsOrder(context.Background(), []string{"b", "a"}); err != nil {
		t.Fatalf("UpdateProductsOrder() error = %v", err)
	}
	got := repo.lastBatchOrder()
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("batch order = %v, want [b a]", got)
	}

	err := svc.UpdateProductsOrder(context.Background(), []string{"b", "ghost"})
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("UpdateProductsOrder() with unknown id error = %v, want ErrProductNotFound", err)
	}
}

func TestCatalogService_DragLifecycle(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo)
	repo.push([]*domain.Product{
		productWithOrder("a", 0),
		productWithOrder("b", 1),
		productWithOrder("c", 2),
		productWithOrder("d", 3),
	})

	if err := svc.DragStart(0); err != nil {
		t.Fatalf("DragStart() error = %v", err)
	}
	if err := svc.DragStart(1); !errors.Is(err, ErrDragInProgress) {
		t.Fatalf("second DragStart() error = %v, want ErrDragInProgress", err)
	}

	// Dragging row 0 over row 2 is an array move, not a swap: a,b,c,d -> b,c,a,d.
	if err := svc.DragEnter(2); err != nil {
		t.Fatalf("DragEnter(2) error = %v", err)
	}
	got := svc.Products()
	wantOrder := []string{"b", "c", "a", "d"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("after enter, position %d = %s, want %s (full: %v)", i, got[i].ID, id, ids(got))
		}
	}

	// Dragging back one row keeps following the pointer: b,c,a,d -> b,a,c,d.
	if err := svc.DragEnter(1); err != nil {
		t.Fatalf("DragEnter(1) error = %v", err)
	}
	got = svc.Products()
	wantOrder = []string{"b", "a", "c", "d"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("after second enter, position %d = %s, want %s (full: %v)", i, got[i].ID, id, ids(got))
		}
	}

	svc.DragEnd(context.Background())

	committed := repo.lastBatchOrder()
	if len(committed) != 4 {
		t.Fatalf("committed order = %v", committed)
	}
	for i, id := range wantOrder {
		if committed[i] != id {
			t.Errorf("committed[%d] = %s, want %s", i, committed[i], id)
		}
	}

	// Back to idle: entering without a drag is an error, ending is a no-op.
	if err := svc.DragEnter(0); !errors.Is(err, ErrNotDragging) {
		t.Errorf("DragEnter() after end error = %v, want ErrNotDragging", err)
	}
	svc.DragEnd(context.Background())
}

func TestCatalogService_DragIgnoresSnapshotsUntilCommit(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo)
	repo.push([]*domain.Product{productWithOrder("a", 0), productWithOrder("b", 1)})

	if err := svc.DragStart(0); err != nil {
		t.Fatalf("DragStart() error = %v", err)
	}
	if err := svc.DragEnter(1); err != nil {
		t.Fatalf("DragEnter() error = %v", err)
	}

	// A snapshot arriving mid-drag must not clobber the local order.
	repo.push([]*domain.Product{productWithOrder("a", 0), productWithOrder("b", 1)})

	got := svc.Products()
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("mid-drag products = %v, want local order [b a]", ids(got))
	}
}

func TestCatalogService_DragEnterAt(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo)
	repo.push([]*domain.Product{productWithOrder("a", 0), productWithOrder("b", 1)})

	if err := svc.DragStart(0); err != nil {
		t.Fatalf("DragStart() error = %v", err)
	}

	rows := []RowBounds{
		{Index: 0, Top: 0, Bottom: 50},
		{Index: 1, Top: 50, Bottom: 100},
	}

	// Touch point inside row 1 moves the dragged row there.
	if err := svc.DragEnterAt(75, rows); err != nil {
		t.Fatalf("DragEnterAt() error = %v", err)
	}
	got := svc.Products()
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("products = %v, want [b a]", ids(got))
	}

	// Touch point below every row snaps to the nearest row center.
	if err := svc.DragEnterAt(300, rows); err != nil {
		t.Fatalf("DragEnterAt() below rows error = %v", err)
	}

	// No rows at all: nothing to hit, silently ignored.
	if err := svc.DragEnterAt(10, nil); err != nil {
		t.Errorf("DragEnterAt() with no rows error = %v", err)
	}
}

func TestCatalogService_DragStartBounds(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo)
	repo.push([]*domain.Product{productWithOrder("a", 0)})

	if err := svc.DragStart(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("DragStart(-1) error = %v, want ErrIndexOutOfRange", err)
	}
	if err := svc.DragStart(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("DragStart(1) error = %v, want ErrIndexOutOfRange", err)
	}
}

func ids(products []*domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
