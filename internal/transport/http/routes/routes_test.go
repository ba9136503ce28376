package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/social-platform-auth/internal/infra/config"
	"github.com/arklim/social-platform-auth/internal/infra/security"
)

func testDependencies(t *testing.T) Dependencies {
	t.Helper()

	tokens, err := security.NewTokenManager(config.JWTSettings{
		Secret:          "routes-test-secret",
		Issuer:          "auth-service-test",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("init token manager: %v", err)
	}

	return Dependencies{
		Config: &config.AppConfig{
			App: config.AppSettings{Env: "test"},
		},
		Logger: zaptest.NewLogger(t),
		Tokens: tokens,
	}
}

func TestHealthzEndpoint(t *testing.T) {
	engine := Register(testDependencies(t))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestReadyzWithoutCheckersReportsReady(t *testing.T) {
	engine := Register(testDependencies(t))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestUserRoutesRequireAuthentication(t *testing.T) {
	engine := Register(testDependencies(t))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestMetricsEndpointRegistered(t *testing.T) {
	engine := Register(testDependencies(t))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequestIDHeaderSetOnResponses(t *testing.T) {
	engine := Register(testDependencies(t))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header on response")
	}
}
