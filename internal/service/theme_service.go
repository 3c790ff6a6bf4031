// Package service 实现店铺主题业务逻辑。
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/domain"
	"github.com/MorseWayne/pet_catalog/internal/kvstore"
)

// themeKey 主题在键值存储中的键
const themeKey = "petshop:theme"

// ThemeService 定义主题业务逻辑接口。
// 每次变更都同步持久化，且 CSS 变量映射在同一次更新内立即生效，
// 没有批处理或防抖。
type ThemeService interface {
	// Theme 返回当前主题
	Theme() domain.Theme
	// CSSVariables 返回当前主题的展示层变量映射
	CSSVariables() map[string]string
	// SetTheme 整体替换主题
	SetTheme(ctx context.Context, theme domain.Theme)
	// UpdateTheme 按字段部分更新主题
	UpdateTheme(ctx context.Context, update *domain.ThemeUpdate)
}

// themeService 实现 ThemeService 接口
type themeService struct {
	store  kvstore.Store
	logger *zap.Logger

	mu    sync.RWMutex
	theme domain.Theme
}

// NewThemeService 创建主题服务实例，启动时从持久存储加载（缺失时用默认值）
func NewThemeService(store kvstore.Store, logger *zap.Logger) ThemeService {
	s := &themeService{store: store, logger: logger, theme: domain.DefaultTheme()}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var loaded domain.Theme
	if err := store.Get(ctx, themeKey, &loaded); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.Warn("load theme failed, using defaults", zap.Error(err))
		}
	} else {
		s.theme = loaded
	}
	return s
}

// Theme 返回当前主题
func (s *themeService) Theme() domain.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// CSSVariables 返回展示层变量映射，随主题即时重算
func (s *themeService) CSSVariables() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme.CSSVariables()
}

// SetTheme 整体替换主题
func (s *themeService) SetTheme(ctx context.Context, theme domain.Theme) {
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	s.persist(ctx)
}

// UpdateTheme 部分更新主题
func (s *themeService) UpdateTheme(ctx context.Context, update *domain.ThemeUpdate) {
	s.mu.Lock()
	s.theme.Apply(update)
	s.mu.Unlock()
	s.persist(ctx)
}

// persist 持久化主题。写失败只记录日志，内存状态保持有效。
func (s *themeService) persist(ctx context.Context) {
	s.mu.RLock()
	theme := s.theme
	s.mu.RUnlock()
	if err := s.store.Set(ctx, themeKey, &theme); err != nil {
		s.logger.Warn("persist theme failed", zap.Error(err))
	}
}
