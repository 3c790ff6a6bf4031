package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/pet_catalog/internal/kvstore"
	"github.com/MorseWayne/pet_catalog/internal/service"
)

func TestSession(t *testing.T) {
	analytics := service.NewAnalyticsService(kvstore.NewMemoryStore(), time.Minute, zap.NewNop())

	var ctxSessionID string
	handler := Session(analytics, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxSessionID = SessionIDFromContext(r.Context())
	}))

	// First request without a session header mints an ID.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	minted := rec.Header().Get(HeaderSessionID)
	if minted == "" {
		t.Fatal("no session ID in response header")
	}
	if ctxSessionID != minted {
		t.Errorf("context session = %s, header = %s", ctxSessionID, minted)
	}

	// Replaying the ID keeps the same session.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set(HeaderSessionID, minted)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderSessionID); got != minted {
		t.Errorf("session on replay = %s, want %s", got, minted)
	}

	// Only the first request counted as a visit.
	stats := analytics.Dashboard(context.Background())
	if stats.TotalVisits != 1 {
		t.Errorf("totalVisits = %d, want 1", stats.TotalVisits)
	}
}
