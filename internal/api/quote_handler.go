// Package api 提供报价相关的HTTP API处理器实现。
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/middleware"
	"github.com/MorseWayne/pet_catalog/internal/resp"
	"github.com/MorseWayne/pet_catalog/internal/service"
)

// QuoteHandler 报价相关的HTTP处理器
type QuoteHandler struct {
	quoteService service.QuoteService
	logger       *zap.Logger
}

// NewQuoteHandler 创建报价处理器实例
func NewQuoteHandler(quoteService service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService, logger: logger}
}

// CreateQuote 汇总会话购物车生成 WhatsApp 报价深链。
// 成功后购物车被清空，报价完成计数加一。
// POST /api/v1/quote
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	var req service.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "name is required", reqID, "")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "email is required", reqID, "")
		return
	}

	quote, err := h.quoteService.BuildQuote(r.Context(), sessionID, &req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "cart is empty", reqID, "")
			return
		}
		h.logger.Error("build quote failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "build quote failed", reqID, "")
		return
	}

	resp.OK(w, quote, reqID, "")
}
