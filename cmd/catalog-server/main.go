package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/api"
	"github.com/MorseWayne/pet_catalog/internal/config"
	"github.com/MorseWayne/pet_catalog/internal/database"
	"github.com/MorseWayne/pet_catalog/internal/docstore"
	"github.com/MorseWayne/pet_catalog/internal/kvstore"
	"github.com/MorseWayne/pet_catalog/internal/limiter"
	"github.com/MorseWayne/pet_catalog/internal/logger"
	mw "github.com/MorseWayne/pet_catalog/internal/middleware"
	"github.com/MorseWayne/pet_catalog/internal/repo"
	"github.com/MorseWayne/pet_catalog/internal/resp"
	"github.com/MorseWayne/pet_catalog/internal/service"
)

// AppDependencies 包含应用的所有依赖
type AppDependencies struct {
	CatalogHandler   *api.CatalogHandler
	CartHandler      *api.CartHandler
	QuoteHandler     *api.QuoteHandler
	ThemeHandler     *api.ThemeHandler
	AnalyticsHandler *api.AnalyticsHandler
	AdminHandler     *api.AdminHandler

	AdminService     service.AdminService
	AnalyticsService service.AnalyticsService
	QuoteLimiter     limiter.Limiter // Redis 不可用时为 nil，报价端点不限流
}

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %v", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %v", err)
	}

	return cfg, lg, nil
}

// initDatabase 初始化数据库连接并执行迁移。
// 迁移在 HTTP 服务器启动前完成，确保处理请求时文档表已就绪。
func initDatabase(cfg *config.Config, lg *zap.Logger) (*database.DB, error) {
	db, err := database.New(cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	migrationsDir := cfg.Migrations.Dir
	lg.Sugar().Infow("using migrations directory", "path", migrationsDir)

	if err := db.RunMigrations(migrationsDir); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %v", err)
	}

	return db, nil
}

// initKVStore 初始化键值存储：优先 Redis，不可用时退回内存实现。
// 第二个返回值是 Redis 实例（退回内存时为 nil），供限流器复用连接。
func initKVStore(cfg *config.Config, lg *zap.Logger) (kvstore.Store, *kvstore.RedisStore) {
	if !cfg.Redis.Enabled {
		lg.Sugar().Infow("kv store enabled", "type", "memory")
		return kvstore.NewMemoryStore(), nil
	}

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisStore, err := kvstore.NewRedisStore(redisAddr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		lg.Sugar().Warnw("failed to connect to Redis, falling back to memory store", "error", err)
		return kvstore.NewMemoryStore(), nil
	}
	lg.Sugar().Infow("kv store enabled", "type", "redis", "addr", redisAddr)
	return redisStore, redisStore
}

// initDependencies 初始化应用依赖（文档存储、仓储、服务、处理器）
func initDependencies(cfg *config.Config, db *database.DB, kv kvstore.Store,
	redisStore *kvstore.RedisStore, lg *zap.Logger) (*AppDependencies, error) {
	// 依赖注入链：文档存储 -> 仓储 -> 服务 -> API处理器
	docs := docstore.NewMySQLStore(db.DB, lg)
	catalogRepo := repo.NewCatalogRepository(docs, lg)

	catalogService := service.NewCatalogService(catalogRepo)
	analyticsService := service.NewAnalyticsService(kv, cfg.Session.TTL, lg)
	cartService := service.NewCartService(catalogService, analyticsService, kv, cfg.Session.TTL, lg)
	themeService := service.NewThemeService(kv, lg)
	quoteService := service.NewQuoteService(cartService, analyticsService, cfg.Quote.WhatsAppNumber)

	adminService, err := service.NewAdminService(cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("init admin service: %v", err)
	}

	// 报价端点限流器与键值存储共用 Redis 连接
	var quoteLimiter limiter.Limiter
	if redisStore != nil {
		quoteLimiter = limiter.NewTokenBucketLimiter(redisStore.Client(), &limiter.Config{
			Rate:      cfg.Quote.RateLimit,
			Window:    time.Second,
			Burst:     cfg.Quote.RateBurst,
			KeyPrefix: "petshop:limiter:quote",
		})
	} else {
		lg.Sugar().Infow("quote rate limiting disabled, redis unavailable")
	}

	return &AppDependencies{
		CatalogHandler:   api.NewCatalogHandler(catalogService, lg),
		CartHandler:      api.NewCartHandler(cartService, catalogService, lg),
		QuoteHandler:     api.NewQuoteHandler(quoteService, lg),
		ThemeHandler:     api.NewThemeHandler(themeService, lg),
		AnalyticsHandler: api.NewAnalyticsHandler(analyticsService, lg),
		AdminHandler:     api.NewAdminHandler(adminService, lg),
		AdminService:     adminService,
		AnalyticsService: analyticsService,
		QuoteLimiter:     quoteLimiter,
	}, nil
}

// setupRoutes 设置路由和中间件
func setupRoutes(cfg *config.Config, deps *AppDependencies, lg *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// 健康检查端点
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		reqID := mw.RequestIDFromContext(r.Context())
		data := map[string]any{
			"status":  "ok",
			"version": cfg.App.Version,
		}
		resp.OK(w, &data, reqID, "")
	})

	// 店面路由均经过会话中间件：惰性发放访客会话并续期
	session := mw.Session(deps.AnalyticsService, lg)

	// 商品目录（公开）
	mux.Handle("/api/v1/products", session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			deps.CatalogHandler.ListProducts(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/api/v1/products/", session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			deps.CatalogHandler.GetProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/api/v1/categories", session(http.HandlerFunc(deps.CatalogHandler.ListCategories)))

	// 购物车（会话隔离）
	mux.Handle("/api/v1/cart", session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			deps.CartHandler.GetCart(w, r)
		case http.MethodDelete:
			deps.CartHandler.ClearCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/api/v1/cart/items", session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			deps.CartHandler.AddToCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/api/v1/cart/items/", session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			deps.CartHandler.UpdateQuantity(w, r)
		case http.MethodDelete:
			deps.CartHandler.RemoveItem(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// 报价（限流保护）
	var quoteHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			deps.QuoteHandler.CreateQuote(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	if deps.QuoteLimiter != nil {
		quoteHandler = mw.RateLimit(deps.QuoteLimiter, lg)(quoteHandler)
	}
	mux.Handle("/api/v1/quote", session(quoteHandler))

	// 主题（公开读取）
	mux.Handle("/api/v1/theme", session(http.HandlerFunc(deps.ThemeHandler.GetTheme)))
	mux.Handle("/api/v1/theme/css-variables", session(http.HandlerFunc(deps.ThemeHandler.GetCSSVariables)))

	// 管理登录（无需令牌）
	mux.HandleFunc("/api/v1/admin/login", deps.AdminHandler.Login)

	// 管理端路由（需要管理令牌）
	adminOnly := mw.RequireAdmin(deps.AdminService, lg)

	mux.Handle("/api/v1/admin/products", adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			deps.CatalogHandler.CreateProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/api/v1/admin/products/order", adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			deps.CatalogHandler.UpdateOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/api/v1/admin/products/drag/start", adminOnly(http.HandlerFunc(deps.CatalogHandler.DragStart)))
	mux.Handle("/api/v1/admin/products/drag/enter", adminOnly(http.HandlerFunc(deps.CatalogHandler.DragEnter)))
	mux.Handle("/api/v1/admin/products/drag/enter-at", adminOnly(http.HandlerFunc(deps.CatalogHandler.DragEnterAt)))
	mux.Handle("/api/v1/admin/products/drag/end", adminOnly(http.HandlerFunc(deps.CatalogHandler.DragEnd)))
	mux.Handle("/api/v1/admin/products/", adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			deps.CatalogHandler.UpdateProduct(w, r)
		case http.MethodDelete:
			deps.CatalogHandler.DeleteProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/api/v1/admin/theme", adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			deps.ThemeHandler.SetTheme(w, r)
		case http.MethodPatch:
			deps.ThemeHandler.UpdateTheme(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/api/v1/admin/analytics", adminOnly(http.HandlerFunc(deps.AnalyticsHandler.Dashboard)))
	mux.Handle("/api/v1/admin/analytics/reset", adminOnly(http.HandlerFunc(deps.AnalyticsHandler.Reset)))

	// 构建中间件链：请求进入时执行顺序为 access log → CORS → timeout → recovery → request ID
	handler := mw.RequestID(mux)
	handler = mw.Recovery(lg)(handler)
	handler = mw.Timeout(cfg.App.RequestTimeout)(handler)
	handler = mw.CORS(mw.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	})(handler)
	handler = mw.AccessLog(lg)(handler)

	return handler
}

// startServer 启动服务器并处理优雅关闭
func startServer(cfg *config.Config, handler http.Handler, lg *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	lg.Sugar().Infow("server starting", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	select {
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			lg.Sugar().Fatalw("server error", "err", err)
		}
	case <-quit:
		lg.Sugar().Infow("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Sugar().Errorw("server shutdown error", "err", err)
	}
	lg.Sugar().Infow("server exited")
}

// main 为应用入口，协调各个组件的初始化和启动
func main() {
	// 1) 加载配置和初始化日志
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("failed to initialize config and logger: %v", err)
	}

	// 2) 初始化数据库连接并执行迁移
	db, err := initDatabase(cfg, lg)
	if err != nil {
		lg.Sugar().Fatalw("failed to initialize database", "err", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Sugar().Errorw("failed to close database connection", "err", err)
		}
	}()

	// 3) 初始化键值存储
	kv, redisStore := initKVStore(cfg, lg)
	defer func() {
		if err := kv.Close(); err != nil {
			lg.Sugar().Errorw("failed to close kv store", "err", err)
		}
	}()

	// 4) 初始化应用依赖（文档存储、仓储、服务、处理器）
	deps, err := initDependencies(cfg, db, kv, redisStore, lg)
	if err != nil {
		lg.Sugar().Fatalw("failed to initialize dependencies", "err", err)
	}

	// 5) 设置路由和中间件
	handler := setupRoutes(cfg, deps, lg)

	// 6) 启动 HTTP 服务器
	startServer(cfg, handler, lg)
}
