// Package api 提供购物车相关的HTTP API处理器实现。
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/middleware"
	"github.com/MorseWayne/pet_catalog/internal/resp"
	"github.com/MorseWayne/pet_catalog/internal/service"
)

// CartHandler 购物车相关的HTTP处理器
type CartHandler struct {
	cartService    service.CartService
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCartHandler 创建购物车处理器实例
func NewCartHandler(cartService service.CartService, catalogService service.CatalogService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService:    cartService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// GetCart 获取会话购物车
// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())
	cart := h.cartService.Cart(r.Context(), sessionID)
	resp.OK(w, cart, reqID, "")
}

// addToCartRequest 加购请求
type addToCartRequest struct {
	ProductID     string `json:"productId"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
}

// AddToCart 加购：同一商品同一变体组合合并为一行。
// 有尺寸/颜色配置的商品必须先完成选择，校验在这一边界完成。
// POST /api/v1/cart/items
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}
	if req.ProductID == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "productId is required", reqID, "")
		return
	}

	product, err := h.catalogService.ProductByID(req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", reqID, "")
			return
		}
		h.logger.Error("lookup product failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "add to cart failed", reqID, "")
		return
	}
	if product.HasSizes() && req.SelectedSize == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "size selection is required", reqID, "")
		return
	}
	if product.HasColors() && req.SelectedColor == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "color selection is required", reqID, "")
		return
	}

	cart, err := h.cartService.AddToCart(r.Context(), sessionID, req.ProductID, req.SelectedSize, req.SelectedColor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", reqID, "")
		case errors.Is(err, service.ErrUnknownColor):
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "selected color not defined on product", reqID, "")
		default:
			h.logger.Error("add to cart failed", zap.String("request_id", reqID), zap.Error(err))
			resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "add to cart failed", reqID, "")
		}
		return
	}

	resp.OK(w, cart, reqID, "")
}

// updateQuantityRequest 数量更新请求（绝对值）
type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity 将行数量替换为绝对值；0 或负数等价于移除该行
// PUT /api/v1/cart/items/{cartItemId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	cartItemID := pathTail(r.URL.Path, "/api/v1/cart/items/")
	if cartItemID == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid cart item ID", reqID, "")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	cart := h.cartService.UpdateQuantity(r.Context(), sessionID, cartItemID, req.Quantity)
	resp.OK(w, cart, reqID, "")
}

// RemoveItem 移除购物车行；行不存在时为无操作
// DELETE /api/v1/cart/items/{cartItemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	cartItemID := pathTail(r.URL.Path, "/api/v1/cart/items/")
	if cartItemID == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid cart item ID", reqID, "")
		return
	}

	cart := h.cartService.RemoveFromCart(r.Context(), sessionID, cartItemID)
	resp.OK(w, cart, reqID, "")
}

// ClearCart 清空会话购物车
// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())
	h.cartService.ClearCart(r.Context(), sessionID)
	resp.OK(w, map[string]any{"cleared": true}, reqID, "")
}
