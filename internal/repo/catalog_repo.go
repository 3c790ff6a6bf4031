// Package repo 实现商品目录的远端适配器。
package repo

import (
	"context"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/docstore"
	"github.com/MorseWayne/pet_catalog/internal/domain"
)

// productsCollection 商品集合名
const productsCollection = "products"

// CatalogRepository 定义商品目录数据访问接口。
// 写操作为即发即弃语义：失败被捕获并记录日志，不以错误形式上抛，
// 调用方乐观假设写入成功（见错误处理设计）。
type CatalogRepository interface {
	// Subscribe 订阅商品快照：每次集合变更推送完整的、
	// 已按 Order 升序排序（缺失排末尾）的商品列表
	Subscribe(fn func(products []*domain.Product)) (unsubscribe func())
	// Add 创建商品，order 为调用方计算好的排序键
	Add(ctx context.Context, req *domain.CreateProductRequest, order int64)
	// Update 按 ID 整字段更新
	Update(ctx context.Context, req *domain.UpdateProductRequest)
	// Delete 按 ID 删除
	Delete(ctx context.Context, id string)
	// BatchUpdateOrder 原子批量写入排序键：orderedIDs 中每个商品的
	// order 被赋为其下标（0 起，连续）。部分生效是不一致状态，必须避免。
	BatchUpdateOrder(ctx context.Context, orderedIDs []string)
}

// catalogRepo 实现 CatalogRepository 接口
type catalogRepo struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewCatalogRepository 创建商品目录仓储实例
func NewCatalogRepository(store docstore.Store, logger *zap.Logger) CatalogRepository {
	return &catalogRepo{store: store, logger: logger}
}

// Subscribe 订阅商品快照
func (r *catalogRepo) Subscribe(fn func(products []*domain.Product)) func() {
	return r.store.Subscribe(productsCollection, func(docs []docstore.Document) {
		products := make([]*domain.Product, 0, len(docs))
		for _, doc := range docs {
			p, diags := decodeProduct(doc)
			for _, d := range diags {
				r.logger.Warn("sanitized product field",
					zap.String("doc_id", d.DocID),
					zap.String("field", d.Field),
					zap.String("reason", d.Reason),
				)
			}
			products = append(products, p)
		}
		domain.SortProductsByOrder(products)
		fn(products)
	})
}

// Add 创建商品
func (r *catalogRepo) Add(ctx context.Context, req *domain.CreateProductRequest, order int64) {
	fields := encodeProductFields(req.Name, req.Description, req.Price, req.Category,
		req.ImageURL, &order, req.Sizes, req.Colors)
	if _, err := r.store.Add(ctx, productsCollection, fields); err != nil {
		r.logger.Error("add product failed", zap.String("name", req.Name), zap.Error(err))
	}
}

// Update 按 ID 整字段更新
func (r *catalogRepo) Update(ctx context.Context, req *domain.UpdateProductRequest) {
	fields := encodeProductFields(req.Name, req.Description, req.Price, req.Category,
		req.ImageURL, req.Order, req.Sizes, req.Colors)
	if err := r.store.Update(ctx, productsCollection, req.ID, fields); err != nil {
		r.logger.Error("update product failed", zap.String("id", req.ID), zap.Error(err))
	}
}

// Delete 按 ID 删除
func (r *catalogRepo) Delete(ctx context.Context, id string) {
	if err := r.store.Delete(ctx, productsCollection, id); err != nil {
		r.logger.Error("delete product failed", zap.String("id", id), zap.Error(err))
	}
}

// BatchUpdateOrder 原子批量写入排序键
func (r *catalogRepo) BatchUpdateOrder(ctx context.Context, orderedIDs []string) {
	writes := make([]docstore.Write, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		writes = append(writes, docstore.Write{
			Collection: productsCollection,
			ID:         id,
			Fields:     map[string]any{"order": float64(i)},
		})
	}
	if err := r.store.BatchWrite(ctx, writes); err != nil {
		r.logger.Error("batch update order failed", zap.Int("count", len(orderedIDs)), zap.Error(err))
	}
}
