// Package resp 提供统一的HTTP响应封装，保证所有接口返回一致的信封结构。
package resp

import (
	"encoding/json"
	"net/http"
)

// 业务响应码集合。0 表示成功，非 0 表示各类错误。
const (
	CodeOK            = 0
	CodeInvalidParam  = 40001
	CodeUnauthorized  = 40101
	CodeForbidden     = 40301
	CodeNotFound      = 40401
	CodeTooMany       = 42901
	CodeInternalError = 50001
	CodeTimeout       = 50401
)

// Body 统一响应信封。
type Body struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// HTTPStatusFromCode 将业务码映射为HTTP状态码。
func HTTPStatusFromCode(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooMany:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// OK 写入成功响应。
func OK(w http.ResponseWriter, data any, requestID, traceID string) {
	write(w, http.StatusOK, &Body{
		Code:      CodeOK,
		Message:   "ok",
		Data:      data,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// Error 写入错误响应。
func Error(w http.ResponseWriter, httpStatus, code int, message, requestID, traceID string) {
	write(w, httpStatus, &Body{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

func write(w http.ResponseWriter, status int, body *Body) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// 编码失败时无法再补救，头已经写出，只能忽略
	_ = json.NewEncoder(w).Encode(body)
}
