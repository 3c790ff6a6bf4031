// Package kvstore 提供持久化键值存储抽象与Redis实现。
// 值统一以 JSON 序列化；集合类字段的特殊编码由值类型自身的
// Marshal/Unmarshal 实现承担，存储层不感知。
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("kvstore: key not found")

// Store 定义键值存储操作接口
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// MemoryStore 内存实现（用于开发和测试）
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*memoryItem
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time // 零值表示永不过期
}

func (it *memoryItem) expired() bool {
	return !it.expiresAt.IsZero() && time.Now().After(it.expiresAt)
}

// NewMemoryStore 创建内存存储实例
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*memoryItem)}
}

// Get 读取键值并反序列化到 dest
func (m *MemoryStore) Get(ctx context.Context, key string, dest any) error {
	m.mu.RLock()
	item, ok := m.data[key]
	m.mu.RUnlock()
	if !ok || item.expired() {
		return ErrNotFound
	}
	return json.Unmarshal(item.value, dest)
}

// Set 写入键值，永不过期
func (m *MemoryStore) Set(ctx context.Context, key string, value any) error {
	return m.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL 写入键值并设置过期时间，ttl 为 0 表示永不过期
func (m *MemoryStore) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	item := &memoryItem{value: data}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.data[key] = item
	m.mu.Unlock()
	return nil
}

// SetNX 仅当键不存在时写入
func (m *MemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	if item, ok := m.data[key]; ok && !item.expired() {
		m.mu.Unlock()
		return false, nil
	}
	m.mu.Unlock()
	return true, m.SetWithTTL(ctx, key, value, ttl)
}

// Del 删除键
func (m *MemoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.data, key)
	}
	m.mu.Unlock()
	return nil
}

// Exists 检查键是否存在
func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	item, ok := m.data[key]
	m.mu.RUnlock()
	return ok && !item.expired(), nil
}

// Ping 检查连接
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close 关闭存储
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.data = make(map[string]*memoryItem)
	m.mu.Unlock()
	return nil
}
