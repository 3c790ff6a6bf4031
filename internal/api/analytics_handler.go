// Package api 提供使用统计相关的HTTP API处理器实现。
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/middleware"
	"github.com/MorseWayne/pet_catalog/internal/resp"
	"github.com/MorseWayne/pet_catalog/internal/service"
)

// AnalyticsHandler 使用统计相关的HTTP处理器
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	logger           *zap.Logger
}

// NewAnalyticsHandler 创建统计处理器实例
func NewAnalyticsHandler(analyticsService service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, logger: logger}
}

// Dashboard 获取管理面板统计视图
// GET /api/v1/admin/analytics
// 需要管理令牌
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	stats := h.analyticsService.Dashboard(r.Context())
	resp.OK(w, stats, reqID, "")
}

// resetAnalyticsRequest 统计清零请求，必须显式确认
type resetAnalyticsRequest struct {
	Confirm bool `json:"confirm"`
}

// Reset 清零所有统计并清除持久副本。破坏性且不可逆，
// 请求体必须携带 confirm=true。
// POST /api/v1/admin/analytics/reset
// 需要管理令牌
func (h *AnalyticsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req resetAnalyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}
	if !req.Confirm {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "confirmation required", reqID, "")
		return
	}

	if err := h.analyticsService.Reset(r.Context()); err != nil {
		h.logger.Error("reset analytics failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "reset analytics failed", reqID, "")
		return
	}

	resp.OK(w, map[string]any{"reset": true}, reqID, "")
}
