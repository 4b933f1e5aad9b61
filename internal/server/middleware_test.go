package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/models"
)

func TestBearerTokenMiddleware_NoHeaderPassesThrough(t *testing.T) {
	a, storage := testApp()

	var sawUser string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawUser = common.ResolveUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := bearerTokenMiddleware(a.Config, storage.internal)(inner)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/market/stocks", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sawUser != "" {
		t.Errorf("expected no user identity, got %q", sawUser)
	}
}

func TestBearerTokenMiddleware_InvalidToken(t *testing.T) {
	a, storage := testApp()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with an invalid token")
	})

	handler := bearerTokenMiddleware(a.Config, storage.internal)(inner)
	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("expected WWW-Authenticate header")
	}
}

func TestBearerTokenMiddleware_ValidTokenPopulatesIdentity(t *testing.T) {
	a, storage := testApp()
	storage.internal.users["u1"] = &models.User{
		UserID: "u1",
		Email:  "ama@example.com",
		Role:   models.RoleAdmin,
	}

	token, err := signJWT(storage.internal.users["u1"], &a.Config.Auth)
	if err != nil {
		t.Fatalf("signJWT failed: %v", err)
	}

	var uc *common.UserContext
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uc = common.UserContextFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := bearerTokenMiddleware(a.Config, storage.internal)(inner)
	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if uc == nil || uc.UserID != "u1" || uc.Role != models.RoleAdmin {
		t.Errorf("unexpected user context: %+v", uc)
	}
}

func TestBearerTokenMiddleware_DeletedAccountRejected(t *testing.T) {
	a, storage := testApp()
	user := &models.User{UserID: "gone", Email: "gone@example.com"}

	token, err := signJWT(user, &a.Config.Auth)
	if err != nil {
		t.Fatalf("signJWT failed: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a deleted account")
	})

	handler := bearerTokenMiddleware(a.Config, storage.internal)(inner)
	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		role   string
		want   int
	}{
		{"unauthenticated", "", "", http.StatusUnauthorized},
		{"plain user", "u1", models.RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/sync", nil)
			if tt.userID != "" {
				req = authedRequest(req, tt.userID, tt.role)
			}
			rec := httptest.NewRecorder()
			if requireAdmin(rec, req) {
				t.Fatal("expected requireAdmin to reject")
			}
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/admin/sync", nil), "a1", models.RoleAdmin)
	rec := httptest.NewRecorder()
	if !requireAdmin(rec, req) {
		t.Error("expected requireAdmin to accept an admin")
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for preflight")
	})

	handler := corsMiddleware(inner)
	req := httptest.NewRequest(http.MethodOptions, "/api/market/stocks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS origin header")
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := correlationIDMiddleware(inner)

	// Provided request ID is echoed back
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Correlation-ID"); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}

	// Absent ID gets generated
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected a generated correlation ID")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := common.NewLoggerFromConfig(common.LoggingConfig{Level: "disabled"})
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	handler := recoveryMiddleware(logger)(inner)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rec.Code)
	}
}
