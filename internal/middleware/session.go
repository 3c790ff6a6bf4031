// Package middleware 提供访客会话中间件。
package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/service"
)

const (
	// HeaderSessionID 访客会话 ID 头
	HeaderSessionID = "X-Session-ID"

	contextKeySessionID contextKey = "session_id"
)

// SessionIDFromContext 从上下文中读取会话 ID（可能为空）。
func SessionIDFromContext(ctx context.Context) string {
	if v := ctx.Value(contextKeySessionID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Session 访客会话中间件：
// 1) 读取请求头 X-Session-ID；
// 2) 有效则续期复用，否则发放新 ID（新 ID 计入一次访问）；
// 3) 将最终 ID 写入响应头与请求上下文。
func Session(analytics service.AnalyticsService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, created := analytics.EnsureSession(r.Context(), r.Header.Get(HeaderSessionID))
			if created {
				logger.Debug("session created",
					zap.String("session_id", id),
					zap.String("request_id", RequestIDFromContext(r.Context())),
				)
			}
			w.Header().Set(HeaderSessionID, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKeySessionID, id)))
		})
	}
}
