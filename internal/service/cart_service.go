// Package service 实现购物车业务逻辑。
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/domain"
	"github.com/MorseWayne/pet_catalog/internal/kvstore"
)

// ErrUnknownColor 选择的颜色在商品上不存在
var ErrUnknownColor = errors.New("selected color not defined on product")

// CartService 定义购物车业务逻辑接口。
// 购物车按会话隔离，经由键值存储持久化；合计始终是派生值。
// 变体选择的校验（有尺寸/颜色配置的商品必须先选择）由调用方在
// 边界完成，本服务假设入参已通过校验。
type CartService interface {
	// Cart 返回会话购物车（不存在时为空购物车）
	Cart(ctx context.Context, sessionID string) *domain.Cart
	// AddToCart 按行标识合并加购，解析变体价格与图片，
	// 并产生统计副作用（商品加购计数、会话集合）
	AddToCart(ctx context.Context, sessionID, productID, selectedSize, selectedColor string) (*domain.Cart, error)
	// RemoveFromCart 移除指定行；行不存在时为无操作
	RemoveFromCart(ctx context.Context, sessionID, cartItemID string) *domain.Cart
	// UpdateQuantity 将行数量替换为绝对值；<= 0 等价于移除
	UpdateQuantity(ctx context.Context, sessionID, cartItemID string, quantity int) *domain.Cart
	// ClearCart 无条件清空
	ClearCart(ctx context.Context, sessionID string)
}

// cartService 实现 CartService 接口
type cartService struct {
	catalog   CatalogService
	analytics AnalyticsService
	store     kvstore.Store
	ttl       time.Duration
	logger    *zap.Logger
}

// NewCartService 创建购物车服务实例
func NewCartService(catalog CatalogService, analytics AnalyticsService,
	store kvstore.Store, ttl time.Duration, logger *zap.Logger) CartService {
	return &cartService{
		catalog:   catalog,
		analytics: analytics,
		store:     store,
		ttl:       ttl,
		logger:    logger,
	}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("petshop:cart:%s", sessionID)
}

// Cart 加载会话购物车，不存在或损坏时返回空购物车
func (s *cartService) Cart(ctx context.Context, sessionID string) *domain.Cart {
	cart := &domain.Cart{}
	if err := s.store.Get(ctx, cartKey(sessionID), cart); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Warn("load cart failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		return &domain.Cart{}
	}
	return cart
}

// AddToCart 加购
func (s *cartService) AddToCart(ctx context.Context, sessionID, productID, selectedSize, selectedColor string) (*domain.Cart, error) {
	product, err := s.catalog.ProductByID(productID)
	if err != nil {
		return nil, err
	}

	// 颜色以商品上的定义为准，避免购物车行携带伪造的变体图片
	var color *domain.ColorOption
	if selectedColor != "" {
		color = product.ColorByName(selectedColor)
		if color == nil {
			return nil, ErrUnknownColor
		}
	}

	cart := s.Cart(ctx, sessionID)
	cart.Add(product, selectedSize, color)
	s.save(ctx, sessionID, cart)

	s.analytics.RecordAddToCart(ctx, sessionID, product.ID, product.Name)
	return cart, nil
}

// RemoveFromCart 移除指定行
func (s *cartService) RemoveFromCart(ctx context.Context, sessionID, cartItemID string) *domain.Cart {
	cart := s.Cart(ctx, sessionID)
	cart.Remove(cartItemID)
	s.save(ctx, sessionID, cart)
	return cart
}

// UpdateQuantity 更新行数量
func (s *cartService) UpdateQuantity(ctx context.Context, sessionID, cartItemID string, quantity int) *domain.Cart {
	cart := s.Cart(ctx, sessionID)
	cart.UpdateQuantity(cartItemID, quantity)
	s.save(ctx, sessionID, cart)
	return cart
}

// ClearCart 清空购物车
func (s *cartService) ClearCart(ctx context.Context, sessionID string) {
	if err := s.store.Del(ctx, cartKey(sessionID)); err != nil {
		s.logger.Warn("clear cart failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// save 持久化购物车。写失败只记录日志，调用方乐观继续。
func (s *cartService) save(ctx context.Context, sessionID string, cart *domain.Cart) {
	if err := s.store.SetWithTTL(ctx, cartKey(sessionID), cart, s.ttl); err != nil {
		s.logger.Warn("save cart failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}
