// Package limiter 提供基于Redis令牌桶的限流实现
package limiter

import (
	"context"
	"time"
)

// Result 限流结果
type Result struct {
	Allowed    bool          `json:"allowed"`     // 是否允许通过
	Remaining  int64         `json:"remaining"`   // 剩余配额
	RetryAfter time.Duration `json:"retry_after"` // 建议重试时间
}

// Limiter 限流器接口
type Limiter interface {
	// Allow 检查是否允许请求通过
	Allow(ctx context.Context, key string) (*Result, error)
	// Reset 重置限流状态
	Reset(ctx context.Context, key string) error
}

// Config 限流配置
type Config struct {
	Rate      float64       // 速率（请求数/时间窗口）
	Window    time.Duration // 时间窗口
	Burst     int64         // 突发容量
	KeyPrefix string        // Key前缀
}
