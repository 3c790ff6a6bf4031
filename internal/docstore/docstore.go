// Package docstore 提供远端文档集合抽象：按集合订阅全量快照，
// 支持新增、按 ID 部分更新、删除以及原子批量写入。
package docstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrDocNotFound 文档不存在
var ErrDocNotFound = errors.New("docstore: document not found")

// Document 一条文档记录：存储分配的 ID 加任意字段
type Document struct {
	ID     string
	Fields map[string]any
}

// Write 批量写入中的一条操作（按 ID 部分更新）
type Write struct {
	Collection string
	ID         string
	Fields     map[string]any
}

// SnapshotFunc 快照回调。每次集合变更后收到完整的当前文档集，
// 而非增量；订阅时会立即收到一次初始快照。
type SnapshotFunc func(docs []Document)

// Store 定义文档存储接口
type Store interface {
	// Subscribe 订阅集合快照，返回取消订阅函数
	Subscribe(collection string, fn SnapshotFunc) (unsubscribe func())
	// Add 新增文档，返回存储分配的 ID
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Update 按 ID 合并部分字段；文档不存在返回 ErrDocNotFound
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete 按 ID 删除文档
	Delete(ctx context.Context, collection, id string) error
	// BatchWrite 原子批量部分更新：要么全部生效，要么全部不生效
	BatchWrite(ctx context.Context, writes []Write) error
	Close() error
}

// subscriberHub 管理订阅者并分发快照，供各实现复用
type subscriberHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]SnapshotFunc // collection -> subscriber id -> fn
}

func newSubscriberHub() *subscriberHub {
	return &subscriberHub{subs: make(map[string]map[int]SnapshotFunc)}
}

func (h *subscriberHub) add(collection string, fn SnapshotFunc) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[int]SnapshotFunc)
	}
	id := h.nextID
	h.nextID++
	h.subs[collection][id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[collection], id)
	}
}

func (h *subscriberHub) notify(collection string, docs []Document) {
	h.mu.Lock()
	fns := make([]SnapshotFunc, 0, len(h.subs[collection]))
	for _, fn := range h.subs[collection] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(docs)
	}
}

// MemoryStore 内存文档存储（用于开发和测试）
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any // collection -> id -> fields
	hub  *subscriberHub
}

// NewMemoryStore 创建内存文档存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]map[string]any),
		hub:  newSubscriberHub(),
	}
}

// Subscribe 订阅集合快照，注册后立即推送一次当前快照
func (m *MemoryStore) Subscribe(collection string, fn SnapshotFunc) func() {
	unsub := m.hub.add(collection, fn)
	fn(m.snapshot(collection))
	return unsub
}

// Add 新增文档
func (m *MemoryStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.New().String()
	m.mu.Lock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]map[string]any)
	}
	m.data[collection][id] = cloneFields(fields)
	m.mu.Unlock()
	m.hub.notify(collection, m.snapshot(collection))
	return id, nil
}

// Update 按 ID 合并部分字段
func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	doc, ok := m.data[collection][id]
	if !ok {
		m.mu.Unlock()
		return ErrDocNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	m.mu.Unlock()
	m.hub.notify(collection, m.snapshot(collection))
	return nil
}

// Delete 按 ID 删除文档
func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	delete(m.data[collection], id)
	m.mu.Unlock()
	m.hub.notify(collection, m.snapshot(collection))
	return nil
}

// BatchWrite 原子批量部分更新。先校验所有目标文档存在再应用，
// 保证不会出现部分生效的中间状态。
func (m *MemoryStore) BatchWrite(ctx context.Context, writes []Write) error {
	m.mu.Lock()
	for _, w := range writes {
		if _, ok := m.data[w.Collection][w.ID]; !ok {
			m.mu.Unlock()
			return ErrDocNotFound
		}
	}
	touched := make(map[string]struct{})
	for _, w := range writes {
		doc := m.data[w.Collection][w.ID]
		for k, v := range w.Fields {
			doc[k] = v
		}
		touched[w.Collection] = struct{}{}
	}
	m.mu.Unlock()
	for collection := range touched {
		m.hub.notify(collection, m.snapshot(collection))
	}
	return nil
}

// Close 关闭存储
func (m *MemoryStore) Close() error { return nil }

// snapshot 构建集合当前快照，按 ID 排序保证顺序稳定
func (m *MemoryStore) snapshot(collection string) []Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]Document, 0, len(m.data[collection]))
	for id, fields := range m.data[collection] {
		docs = append(docs, Document{ID: id, Fields: cloneFields(fields)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
