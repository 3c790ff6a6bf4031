package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/config"
	"github.com/MorseWayne/pet_catalog/internal/service"
)

func newTestAdminService(t *testing.T) service.AdminService {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Name = "pet-catalog"
	cfg.Admin.Password = "secret123"
	cfg.Admin.TokenSecret = "test-signing-secret"
	cfg.Admin.TokenTTL = time.Hour

	svc, err := service.NewAdminService(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAdminService() error = %v", err)
	}
	return svc
}

func TestRequireAdmin(t *testing.T) {
	admin := newTestAdminService(t)
	token, err := admin.Login("secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	var reached bool
	handler := RequireAdmin(admin, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantPass   bool
	}{
		{name: "valid token", authHeader: "Bearer " + token, wantStatus: http.StatusOK, wantPass: true},
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty token", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/analytics", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if reached != tt.wantPass {
				t.Errorf("handler reached = %v, want %v", reached, tt.wantPass)
			}
		})
	}
}
