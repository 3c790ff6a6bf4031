// Package service 实现业务逻辑层，协调各种资源完成业务需求。
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/MorseWayne/pet_catalog/internal/domain"
	"github.com/MorseWayne/pet_catalog/internal/repo"
)

// 定义业务错误
var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotDragging     = errors.New("no drag in progress")
	ErrDragInProgress  = errors.New("drag already in progress")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// RowBounds 描述一行可拖拽元素的纵向范围，供触摸命中测试使用
type RowBounds struct {
	Index  int     `json:"index"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// CatalogService 定义商品目录业务逻辑接口。
// 商品列表有两份事实：committed 来自最近一次订阅快照，
// pending 是拖拽排序期间的本地乐观顺序。拖拽期间 pending 优先，
// 提交后 pending 被丢弃，等待下一次快照收敛。
type CatalogService interface {
	// Products 返回当前展示列表（拖拽期间为本地乐观顺序）
	Products() []*domain.Product
	// ProductByID 按 ID 查找商品
	ProductByID(id string) (*domain.Product, error)
	// Categories 返回按名称排序去重后的分类列表
	Categories() []string

	// AddProduct 创建商品：排序键取 (现有最大 Order 或 -1) + 1
	AddProduct(ctx context.Context, req *domain.CreateProductRequest)
	// UpdateProduct 按 ID 整字段更新
	UpdateProduct(ctx context.Context, req *domain.UpdateProductRequest)
	// DeleteProduct 按 ID 删除
	DeleteProduct(ctx context.Context, id string)
	// UpdateProductsOrder 将每个商品的 Order 赋为其在列表中的下标，原子批量写入
	UpdateProductsOrder(ctx context.Context, orderedIDs []string) error

	// 拖拽排序状态机：Idle -> Dragging -> Idle
	DragStart(index int) error
	DragEnter(index int) error
	// DragEnterAt 触摸路径：把触点映射到最近的可拖拽行，
	// 走与 DragEnter 完全相同的重排流程
	DragEnterAt(y float64, rows []RowBounds) error
	// DragEnd 提交本地顺序（无论此前是否还有在途写入），回到 Idle
	DragEnd(ctx context.Context)
}

// catalogService 实现 CatalogService 接口
type catalogService struct {
	repo repo.CatalogRepository

	mu        sync.Mutex
	committed []*domain.Product // 最近一次快照
	pending   []*domain.Product // 拖拽期间的本地顺序，nil 表示 Idle
	dragIndex int               // 当前被拖拽行下标，-1 表示 Idle
}

// NewCatalogService 创建商品目录服务实例并订阅快照
func NewCatalogService(catalogRepo repo.CatalogRepository) CatalogService {
	s := &catalogService{repo: catalogRepo, dragIndex: -1}
	catalogRepo.Subscribe(s.onSnapshot)
	return s
}

// onSnapshot 快照回调：无条件覆盖 committed（最后快照胜出）。
// 拖拽期间不动 pending，本地顺序在提交前始终优先。
func (s *catalogService) onSnapshot(products []*domain.Product) {
	s.mu.Lock()
	s.committed = products
	s.mu.Unlock()
}

// Products 返回当前展示列表的副本
func (s *catalogService) Products() []*domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.committed
	if s.pending != nil {
		src = s.pending
	}
	out := make([]*domain.Product, len(src))
	copy(out, src)
	return out
}

// ProductByID 按 ID 查找商品
func (s *catalogService) ProductByID(id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.committed {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

// Categories 返回去重排序后的分类列表
func (s *catalogService) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.committed {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// AddProduct 创建商品
func (s *catalogService) AddProduct(ctx context.Context, req *domain.CreateProductRequest) {
	s.mu.Lock()
	order := domain.NextOrder(s.committed)
	s.mu.Unlock()
	s.repo.Add(ctx, req, order)
}

// UpdateProduct 按 ID 整字段更新
func (s *catalogService) UpdateProduct(ctx context.Context, req *domain.UpdateProductRequest) {
	s.repo.Update(ctx, req)
}

// DeleteProduct 按 ID 删除
func (s *catalogService) DeleteProduct(ctx context.Context, id string) {
	s.repo.Delete(ctx, id)
}

// UpdateProductsOrder 原子批量写入排序键
func (s *catalogService) UpdateProductsOrder(ctx context.Context, orderedIDs []string) error {
	s.mu.Lock()
	known := make(map[string]struct{}, len(s.committed))
	for _, p := range s.committed {
		known[p.ID] = struct{}{}
	}
	s.mu.Unlock()
	for _, id := range orderedIDs {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
	}
	s.repo.BatchUpdateOrder(ctx, orderedIDs)
	return nil
}

// DragStart 进入 Dragging 状态：记录被拖拽行，本地顺序从 committed 复制
func (s *catalogService) DragStart(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return ErrDragInProgress
	}
	if index < 0 || index >= len(s.committed) {
		return ErrIndexOutOfRange
	}
	s.pending = make([]*domain.Product, len(s.committed))
	copy(s.pending, s.committed)
	s.dragIndex = index
	return nil
}

// DragEnter 拖拽经过另一行：把被拖拽行移动到该下标（数组移动，非交换），
// 并把拖拽指针更新到新下标。连续跨多行的拖拽因此被建模为
// 一系列单步移动，无需特判。
func (s *catalogService) DragEnter(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return ErrNotDragging
	}
	if index < 0 || index >= len(s.pending) {
		return ErrIndexOutOfRange
	}
	if index == s.dragIndex {
		return nil
	}
	item := s.pending[s.dragIndex]
	s.pending = append(s.pending[:s.dragIndex], s.pending[s.dragIndex+1:]...)
	rest := append(s.pending[:index:index], item)
	s.pending = append(rest, s.pending[index:]...)
	s.dragIndex = index
	return nil
}

// DragEnterAt 触摸命中测试：把触点映射到最近的行并复用 DragEnter
func (s *catalogService) DragEnterAt(y float64, rows []RowBounds) error {
	index, ok := hitTestRow(y, rows)
	if !ok {
		return nil // 触点不在任何行附近，忽略
	}
	return s.DragEnter(index)
}

// DragEnd 提交本地顺序并回到 Idle。
// 提交不等待任何更早的在途写入完成；pending 随即被丢弃，
// committed 先乐观地取 pending 的顺序，由下一次快照最终收敛。
func (s *catalogService) DragEnd(ctx context.Context) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return
	}
	orderedIDs := make([]string, len(s.pending))
	for i, p := range s.pending {
		orderedIDs[i] = p.ID
	}
	s.committed = s.pending
	s.pending = nil
	s.dragIndex = -1
	s.mu.Unlock()

	// 锁外提交：快照回调会再次进入本服务
	s.repo.BatchUpdateOrder(ctx, orderedIDs)
}

// hitTestRow 把纵坐标映射到命中的行；不在任何行内时取中心最近的行。
func hitTestRow(y float64, rows []RowBounds) (int, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	best := -1
	bestDist := 0.0
	for _, r := range rows {
		if y >= r.Top && y <= r.Bottom {
			return r.Index, true
		}
		center := (r.Top + r.Bottom) / 2
		dist := center - y
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best = r.Index
			bestDist = dist
		}
	}
	return best, true
}
