package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/config"
	"github.com/MorseWayne/pet_catalog/internal/service"
)

func newAdminService(t *testing.T) service.AdminService {
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

func TestAdminHandler_Login(t *testing.T) {
	h := NewAdminHandler(newAdminService(t), zap.NewNop())

	rec, out := doJSON(t, h.Login, http.MethodPost, "/api/v1/admin/login",
		map[string]string{"password": "secret123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(out.Data, &data); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if data.Token == "" {
		t.Error("empty token in response")
	}
}

func TestAdminHandler_LoginRejected(t *testing.T) {
	h := NewAdminHandler(newAdminService(t), zap.NewNop())

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{name: "wrong password", body: map[string]string{"password": "nope"}, wantStatus: http.StatusUnauthorized},
		{name: "missing password", body: map[string]string{}, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doJSON(t, h.Login, http.MethodPost, "/api/v1/admin/login", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAnalyticsHandler_ResetRequiresConfirmation(t *testing.T) {
	env := newTestEnv()
	h := NewAnalyticsHandler(env.analytics, zap.NewNop())

	rec, _ := doJSON(t, h.Reset, http.MethodPost, "/api/v1/admin/analytics/reset",
		map[string]bool{"confirm": false})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unconfirmed reset status = %d, want 400", rec.Code)
	}

	rec, _ = doJSON(t, h.Reset, http.MethodPost, "/api/v1/admin/analytics/reset",
		map[string]bool{"confirm": true})
	if rec.Code != http.StatusOK {
		t.Errorf("confirmed reset status = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyticsHandler_Dashboard(t *testing.T) {
	env := newTestEnv()
	h := NewAnalyticsHandler(env.analytics, zap.NewNop())

	env.analytics.RecordAddToCart(context.Background(), "s1", "p1", "Ração")

	_, out := doJSON(t, h.Dashboard, http.MethodGet, "/api/v1/admin/analytics", nil)
	var stats service.DashboardStats
	if err := json.Unmarshal(out.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.SessionsWithCartItems != 1 {
		t.Errorf("sessionsWithCartItems = %d, want 1", stats.SessionsWithCartItems)
	}
}
