package service

import (
	"context"
	"sync"

	"github.com/MorseWayne/pet_catalog/internal/domain"
)

// mockCatalogRepo is a hand-written mock for repo.CatalogRepository.
// Tests drive snapshots through push and inspect recorded writes.
type mockCatalogRepo struct {
	mu sync.Mutex

	snapshotFn func(products []*domain.Product)

	added       []*domain.CreateProductRequest
	addedOrders []int64
	updated     []*domain.UpdateProductRequest
	deleted     []string
	batchOrders [][]string
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{}
}

func (m *mockCatalogRepo) Subscribe(fn func(products []*domain.Product)) func() {
	m.mu.Lock()
	m.snapshotFn = fn
	m.mu.Unlock()
	fn(nil) // initial empty snapshot
	return func() {}
}

// push simulates a snapshot arriving from the document store.
func (m *mockCatalogRepo) push(products []*domain.Product) {
	m.mu.Lock()
	fn := m.snapshotFn
	m.mu.Unlock()
	if fn != nil {
		fn(products)
	}
}

func (m *mockCatalogRepo) Add(ctx context.Context, req *domain.CreateProductRequest, order int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, req)
	m.addedOrders = append(m.addedOrders, order)
}

func (m *mockCatalogRepo) Update(ctx context.Context, req *domain.UpdateProductRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, req)
}

func (m *mockCatalogRepo) Delete(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
}

func (m *mockCatalogRepo) BatchUpdateOrder(ctx context.Context, orderedIDs []string) {
	m.mu.Lock()
	fn := m.snapshotFn
	ids := make([]string, len(orderedIDs))
	copy(ids, orderedIDs)
	m.batchOrders = append(m.batchOrders, ids)
	m.mu.Unlock()

	// The real repository triggers a snapshot after committing; re-entering
	// the subscriber here catches callers holding their own lock.
	if fn != nil {
		products := make([]*domain.Product, 0, len(ids))
		for i, id := range ids {
			order := int64(i)
			products = append(products, &domain.Product{ID: id, Order: &order})
		}
		fn(products)
	}
}

func (m *mockCatalogRepo) lastBatchOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.batchOrders) == 0 {
		return nil
	}
	return m.batchOrders[len(m.batchOrders)-1]
}

func productWithOrder(id string, order int64) *domain.Product {
	return &domain.Product{ID: id, Name: "product " + id, Price: 10, Order: &order}
}
