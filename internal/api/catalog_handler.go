// Package api 提供商品目录相关的HTTP API处理器实现。
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/domain"
	"github.com/MorseWayne/pet_catalog/internal/middleware"
	"github.com/MorseWayne/pet_catalog/internal/resp"
	"github.com/MorseWayne/pet_catalog/internal/service"
)

// CatalogHandler 商品目录相关的HTTP处理器
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler 创建商品目录处理器实例
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// ListProducts 获取商品列表（拖拽期间为本地乐观顺序）
// GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	products := h.catalogService.Products()
	resp.OK(w, products, reqID, "")
}

// GetProduct 获取商品详情
// GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	id := pathTail(r.URL.Path, "/api/v1/products/")
	if id == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return
	}

	product, err := h.catalogService.ProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", reqID, "")
			return
		}
		h.logger.Error("get product failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get product failed", reqID, "")
		return
	}

	resp.OK(w, product, reqID, "")
}

// ListCategories 获取分类列表
// GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	categories := h.catalogService.Categories()
	resp.OK(w, categories, reqID, "")
}

// CreateProduct 创建商品
// POST /api/v1/admin/products
// 需要管理令牌
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	if err := validateProductFields(req.Name, req.Price, req.ImageURL, req.Sizes, req.Colors); err != nil {
		h.logger.Warn("validation failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, err.Error(), reqID, "")
		return
	}

	// 即发即弃写入，展示列表由后续快照收敛
	h.catalogService.AddProduct(r.Context(), &req)
	resp.OK(w, map[string]any{"accepted": true}, reqID, "")
}

// UpdateProduct 整字段更新商品
// PUT /api/v1/admin/products/{id}
// 需要管理令牌
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	id := pathTail(r.URL.Path, "/api/v1/admin/products/")
	if id == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return
	}

	var req domain.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}
	req.ID = id

	if err := validateProductFields(req.Name, req.Price, req.ImageURL, req.Sizes, req.Colors); err != nil {
		h.logger.Warn("validation failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, err.Error(), reqID, "")
		return
	}

	h.catalogService.UpdateProduct(r.Context(), &req)
	resp.OK(w, map[string]any{"accepted": true}, reqID, "")
}

// DeleteProduct 删除商品
// DELETE /api/v1/admin/products/{id}
// 需要管理令牌
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	id := pathTail(r.URL.Path, "/api/v1/admin/products/")
	if id == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return
	}

	h.catalogService.DeleteProduct(r.Context(), id)
	resp.OK(w, map[string]any{"accepted": true}, reqID, "")
}

// updateOrderRequest 批量排序请求
type updateOrderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
}

// UpdateOrder 将商品顺序原子写回（每个商品的排序键取其列表下标）
// PUT /api/v1/admin/products/order
// 需要管理令牌
func (h *CatalogHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}
	if len(req.OrderedIDs) == 0 {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "orderedIds is required", reqID, "")
		return
	}

	if err := h.catalogService.UpdateProductsOrder(r.Context(), req.OrderedIDs); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, err.Error(), reqID, "")
			return
		}
		h.logger.Error("update order failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "update order failed", reqID, "")
		return
	}

	resp.OK(w, map[string]any{"accepted": true}, reqID, "")
}

// dragIndexRequest 拖拽行下标请求
type dragIndexRequest struct {
	Index int `json:"index"`
}

// dragPointRequest 触摸拖拽请求：触点纵坐标与各行纵向范围
type dragPointRequest struct {
	Y    float64             `json:"y"`
	Rows []service.RowBounds `json:"rows"`
}

// DragStart 开始拖拽排序
// POST /api/v1/admin/products/drag/start
// 需要管理令牌
func (h *CatalogHandler) DragStart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req dragIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	if err := h.catalogService.DragStart(req.Index); err != nil {
		h.writeDragError(w, reqID, err)
		return
	}
	resp.OK(w, h.catalogService.Products(), reqID, "")
}

// DragEnter 拖拽经过另一行，返回重排后的本地顺序
// POST /api/v1/admin/products/drag/enter
// 需要管理令牌
func (h *CatalogHandler) DragEnter(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req dragIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	if err := h.catalogService.DragEnter(req.Index); err != nil {
		h.writeDragError(w, reqID, err)
		return
	}
	resp.OK(w, h.catalogService.Products(), reqID, "")
}

// DragEnterAt 触摸路径：按触点坐标命中行后重排
// POST /api/v1/admin/products/drag/enter-at
// 需要管理令牌
func (h *CatalogHandler) DragEnterAt(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req dragPointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	if err := h.catalogService.DragEnterAt(req.Y, req.Rows); err != nil {
		h.writeDragError(w, reqID, err)
		return
	}
	resp.OK(w, h.catalogService.Products(), reqID, "")
}

// DragEnd 提交拖拽排序
// POST /api/v1/admin/products/drag/end
// 需要管理令牌
func (h *CatalogHandler) DragEnd(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	h.catalogService.DragEnd(r.Context())
	resp.OK(w, h.catalogService.Products(), reqID, "")
}

// writeDragError 统一映射拖拽状态机错误
func (h *CatalogHandler) writeDragError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, service.ErrDragInProgress),
		errors.Is(err, service.ErrNotDragging),
		errors.Is(err, service.ErrIndexOutOfRange):
		resp.Error(w, http.StatusConflict, resp.CodeInvalidParam, err.Error(), reqID, "")
	default:
		h.logger.Error("drag operation failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "drag operation failed", reqID, "")
	}
}

// validateProductFields 商品字段基本校验
func validateProductFields(name string, price float64, imageURL string, sizes []domain.SizeOption, colors []domain.ColorOption) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if strings.TrimSpace(imageURL) == "" {
		return fmt.Errorf("image is required")
	}
	for _, s := range sizes {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("size name is required")
		}
		if s.Price < 0 {
			return fmt.Errorf("size price must not be negative")
		}
	}
	for _, c := range colors {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("color name is required")
		}
		if strings.TrimSpace(c.ImageURL) == "" {
			return fmt.Errorf("color image is required")
		}
	}
	return nil
}

// pathTail 提取前缀之后的单段路径参数；为空或含子路径时返回空串
func pathTail(path, prefix string) string {
	tail := strings.TrimPrefix(path, prefix)
	if tail == path || tail == "" || strings.Contains(tail, "/") {
		return ""
	}
	return tail
}
