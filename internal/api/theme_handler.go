// Package api 提供店铺主题相关的HTTP API处理器实现。
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/domain"
	"github.com/MorseWayne/pet_catalog/internal/middleware"
	"github.com/MorseWayne/pet_catalog/internal/resp"
	"github.com/MorseWayne/pet_catalog/internal/service"
)

// ThemeHandler 主题相关的HTTP处理器
type ThemeHandler struct {
	themeService service.ThemeService
	logger       *zap.Logger
}

// NewThemeHandler 创建主题处理器实例
func NewThemeHandler(themeService service.ThemeService, logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{themeService: themeService, logger: logger}
}

// GetTheme 获取当前主题
// GET /api/v1/theme
func (h *ThemeHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	theme := h.themeService.Theme()
	resp.OK(w, &theme, reqID, "")
}

// GetCSSVariables 获取当前主题的展示层变量映射
// GET /api/v1/theme/css-variables
func (h *ThemeHandler) GetCSSVariables(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	vars := h.themeService.CSSVariables()
	resp.OK(w, vars, reqID, "")
}

// SetTheme 整体替换主题（变更同步持久化并立即生效）
// PUT /api/v1/admin/theme
// 需要管理令牌
func (h *ThemeHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var theme domain.Theme
	if err := json.NewDecoder(r.Body).Decode(&theme); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	h.themeService.SetTheme(r.Context(), theme)
	updated := h.themeService.Theme()
	resp.OK(w, &updated, reqID, "")
}

// UpdateTheme 按字段部分更新主题
// PATCH /api/v1/admin/theme
// 需要管理令牌
func (h *ThemeHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var update domain.ThemeUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	h.themeService.UpdateTheme(r.Context(), &update)
	updated := h.themeService.Theme()
	resp.OK(w, &updated, reqID, "")
}
