package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/domain"
	"github.com/MorseWayne/pet_catalog/internal/kvstore"
	"github.com/MorseWayne/pet_catalog/internal/service"
)

// fakeCatalogRepo is a hand-written repo.CatalogRepository for handler tests.
type fakeCatalogRepo struct {
	mu          sync.Mutex
	snapshotFn  func(products []*domain.Product)
	added       []*domain.CreateProductRequest
	deleted     []string
	batchOrders [][]string
}

func (f *fakeCatalogRepo) Subscribe(fn func(products []*domain.Product)) func() {
	f.mu.Lock()
	f.snapshotFn = fn
	f.mu.Unlock()
	fn(nil)
	return func() {}
}

func (f *fakeCatalogRepo) push(products []*domain.Product) {
	f.mu.Lock()
	fn := f.snapshotFn
	f.mu.Unlock()
	if fn != nil {
		fn(products)
	}
}

func (f *fakeCatalogRepo) Add(ctx context.Context, req *domain.CreateProductRequest, order int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, req)
}

func (f *fakeCatalogRepo) Update(ctx context.Context, req *domain.UpdateProductRequest) {}

func (f *fakeCatalogRepo) Delete(ctx context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
}

func (f *fakeCatalogRepo) BatchUpdateOrder(ctx context.Context, orderedIDs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(orderedIDs))
	copy(ids, orderedIDs)
	f.batchOrders = append(f.batchOrders, ids)
}

// testEnv wires real services over in-memory stores for handler tests.
type testEnv struct {
	repo      *fakeCatalogRepo
	catalog   service.CatalogService
	cart      service.CartService
	analytics service.AnalyticsService
}

func newTestEnv() *testEnv {
	lg := zap.NewNop()
	kv := kvstore.NewMemoryStore()
	repo := &fakeCatalogRepo{}
	catalog := service.NewCatalogService(repo)
	analytics := service.NewAnalyticsService(kv, time.Minute, lg)
	cart := service.NewCartService(catalog, analytics, kv, time.Minute, lg)

	repo.push([]*domain.Product{
		{
			ID:     "p1",
			Name:   "Ração Premium",
			Price:  100,
			Sizes:  []domain.SizeOption{{Name: "M", Price: 80}},
			Colors: []domain.ColorOption{{Name: "Azul", ImageURL: "https://img.example/azul.png"}},
		},
		{ID: "p2", Name: "Coleira", Price: 25},
	})

	return &testEnv{repo: repo, catalog: catalog, cart: cart, analytics: analytics}
}
