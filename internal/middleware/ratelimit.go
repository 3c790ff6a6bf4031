// Package middleware 提供基于令牌桶的限流中间件。
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/limiter"
	"github.com/MorseWayne/pet_catalog/internal/resp"
)

// RateLimit 限流中间件，按客户端 IP 维度限流。
// 限流器故障时放行请求，可用性优先于限流精度。
func RateLimit(lim limiter.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := RequestIDFromContext(r.Context())
			key := clientIP(r)

			result, err := lim.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request",
					zap.String("request_id", reqID), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
			if !result.Allowed {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int64(result.RetryAfter.Seconds())))
				logger.Warn("rate limit exceeded",
					zap.String("request_id", reqID),
					zap.String("client_ip", key),
				)
				resp.Error(w, http.StatusTooManyRequests, resp.CodeTooMany, "too many requests", reqID, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP 提取客户端 IP：优先取 X-Forwarded-For 首跳，其次 RemoteAddr。
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
