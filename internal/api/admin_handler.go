// Package api 提供管理口令闸门的HTTP API处理器实现。
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

// AdminHandler 管理闸门的HTTP处理器
type AdminHandler struct {
	adminService service.AdminService
	logger       *zap.Logger
}

// NewAdminHandler 创建管理闸门处理器实例
func NewAdminHandler(adminService service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, logger: logger}
}

// loginRequest 管理登录请求
type loginRequest struct {
	Password string `json:"password"`
}

// loginResponse 管理登录响应
type loginResponse struct {
	Token string `json:"token"`
}

// Login 校验管理口令并签发管理令牌
// POST /api/v1/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}
	if req.Password == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "password is required", reqID, "")
		return
	}

	token, err := h.adminService.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			h.logger.Warn("admin login rejected", zap.String("request_id", reqID))
			resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "invalid password", reqID, "")
			return
		}
		h.logger.Error("admin login failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "login failed", reqID, "")
		return
	}

	resp.OK(w, &loginResponse{Token: token}, reqID, "")
}
