// Package service 实现使用统计与访客会话业务逻辑。
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/domain"
	"github.com/MorseWayne/pet_catalog/internal/kvstore"
)

// analyticsKey 统计数据在键值存储中的键
const analyticsKey = "petshop:analytics"

// TopProduct 加购次数最多的商品条目
type TopProduct struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	AddedToCart int64  `json:"addedToCart"`
}

// DashboardStats 管理面板统计视图
type DashboardStats struct {
	TotalVisits           int64        `json:"totalVisits"`
	SessionsWithCartItems int          `json:"sessionsWithCartItems"`
	QuotesCompleted       int64        `json:"quotesCompleted"`
	ConversionRate        float64      `json:"conversionRate"`
	TopProducts           []TopProduct `json:"topProducts"`
}

// AnalyticsService 定义使用统计业务逻辑接口。
// 统计只做前向累加，从不回算历史；Reset 是唯一清零途径，
// 且必须连同持久副本一起清除，否则后续加载会复活旧值。
type AnalyticsService interface {
	// EnsureSession 惰性建立会话：传入的 ID 有效则续期复用，
	// 否则发放新 ID。同一新 ID 只计入 totalVisits 一次。
	EnsureSession(ctx context.Context, sessionID string) (id string, created bool)
	// RecordAddToCart 记录一次加购副作用
	RecordAddToCart(ctx context.Context, sessionID, productID, productName string)
	// TrackQuoteCompletion 记录一次完成的报价流程
	TrackQuoteCompletion(ctx context.Context)
	// Dashboard 返回管理面板统计视图
	Dashboard(ctx context.Context) *DashboardStats
	// Reset 清零所有计数并清除持久副本。破坏性且不可逆，
	// 调用方必须先获得显式确认。
	Reset(ctx context.Context) error
}

// analyticsService 实现 AnalyticsService 接口
type analyticsService struct {
	store      kvstore.Store
	sessionTTL time.Duration
	logger     *zap.Logger

	mu   sync.Mutex
	data *domain.AnalyticsData
}

// NewAnalyticsService 创建统计服务实例，启动时从持久存储加载历史数据
func NewAnalyticsService(store kvstore.Store, sessionTTL time.Duration, logger *zap.Logger) AnalyticsService {
	s := &analyticsService{
		store:      store,
		sessionTTL: sessionTTL,
		logger:     logger,
		data:       domain.NewAnalyticsData(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	loaded := domain.NewAnalyticsData()
	if err := store.Get(ctx, analyticsKey, loaded); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.Warn("load analytics failed, starting fresh", zap.Error(err))
		}
	} else {
		if loaded.ProductStats == nil {
			loaded.ProductStats = make(map[string]*domain.ProductStat)
		}
		if loaded.SessionsWithCartItems == nil {
			loaded.SessionsWithCartItems = domain.NewStringSet()
		}
		s.data = loaded
	}
	return s
}

func sessionKey(id string) string {
	return fmt.Sprintf("petshop:session:%s", id)
}

// EnsureSession 惰性建立会话
func (s *analyticsService) EnsureSession(ctx context.Context, sessionID string) (string, bool) {
	if sessionID != "" {
		exists, err := s.store.Exists(ctx, sessionKey(sessionID))
		if err != nil {
			s.logger.Warn("check session failed", zap.Error(err))
		}
		if exists {
			// 活跃会话续期，会话槽位随 TTL 到期即视为会话结束
			if err := s.store.SetWithTTL(ctx, sessionKey(sessionID), true, s.sessionTTL); err != nil {
				s.logger.Warn("refresh session failed", zap.Error(err))
			}
			return sessionID, false
		}
	}

	id := uuid.New().String()
	created, err := s.store.SetNX(ctx, sessionKey(id), true, s.sessionTTL)
	if err != nil {
		s.logger.Warn("create session failed", zap.Error(err))
	}
	// 只在槽位确实写入时计访问；存储出错不计数，
	// 同一客户端的重试不会抬高 totalVisits。
	if created {
		s.mu.Lock()
		s.data.RecordVisit()
		s.mu.Unlock()
		s.persist(ctx)
	}
	return id, true
}

// RecordAddToCart 记录一次加购
func (s *analyticsService) RecordAddToCart(ctx context.Context, sessionID, productID, productName string) {
	s.mu.Lock()
	s.data.RecordAddToCart(productID, productName, sessionID)
	s.mu.Unlock()
	s.persist(ctx)
}

// TrackQuoteCompletion 记录一次完成的报价流程
func (s *analyticsService) TrackQuoteCompletion(ctx context.Context) {
	s.mu.Lock()
	s.data.RecordQuoteCompletion()
	s.mu.Unlock()
	s.persist(ctx)
}

// Dashboard 返回统计视图，热门商品按加购次数降序
func (s *analyticsService) Dashboard(ctx context.Context) *DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	top := make([]TopProduct, 0, len(s.data.ProductStats))
	for id, stat := range s.data.ProductStats {
		top = append(top, TopProduct{ProductID: id, Name: stat.Name, AddedToCart: stat.AddedToCart})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].AddedToCart != top[j].AddedToCart {
			return top[i].AddedToCart > top[j].AddedToCart
		}
		return top[i].Name < top[j].Name
	})

	return &DashboardStats{
		TotalVisits:           s.data.TotalVisits,
		SessionsWithCartItems: s.data.SessionsWithCartItems.Len(),
		QuotesCompleted:       s.data.QuotesCompleted,
		ConversionRate:        s.data.ConversionRate(),
		TopProducts:           top,
	}
}

// Reset 清零所有计数并清除持久副本
func (s *analyticsService) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.data = domain.NewAnalyticsData()
	s.mu.Unlock()

	if err := s.store.Del(ctx, analyticsKey); err != nil {
		return fmt.Errorf("purge analytics: %w", err)
	}
	s.logger.Info("analytics reset")
	return nil
}

// persist 持久化统计数据。锁内取深拷贝，序列化发生在锁外，
// 不与并发计数写入共享映射。写失败只记录日志，内存状态保持有效。
func (s *analyticsService) persist(ctx context.Context) {
	s.mu.Lock()
	snapshot := s.data.Clone()
	s.mu.Unlock()
	if err := s.store.Set(ctx, analyticsKey, snapshot); err != nil {
		s.logger.Warn("persist analytics failed", zap.Error(err))
	}
}
