package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apphttp "postcode_lookup/internal/http"
	"postcode_lookup/platform/config"
	"postcode_lookup/platform/httpkit"
	"postcode_lookup/platform/logger"
	"postcode_lookup/platform/validator"

	"github.com/gin-gonic/gin"
)

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, "echo")
	})
}

func newTestApp(health map[string]apphttp.HealthChecker) *apphttp.App {
	gin.SetMode(gin.TestMode)
	return &apphttp.App{
		Config:    &config.Config{CORSAllowAll: true},
		Env:       "development",
		Logger:    logger.Discard(),
		Validator: validator.New(),
		Health:    health,
		Modules:   []apphttp.Module{echoModule{}},
	}
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthAndModuleRoutes(t *testing.T) {
	engine := New(newTestApp(nil))

	rec := serve(engine, http.MethodGet, "/api/health")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"ok"}` {
		t.Fatalf("expected ok health, got %d %q", rec.Code, rec.Body.String())
	}

	rec = serve(engine, http.MethodGet, "/api/v1/echo")
	if rec.Code != http.StatusOK || rec.Body.String() != "echo" {
		t.Fatalf("expected module route under /api/v1, got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(httpkit.RequestIDHeader) == "" {
		t.Fatal("expected request id header on module route")
	}
}

func TestReadinessReportsDownChecks(t *testing.T) {
	engine := New(newTestApp(map[string]apphttp.HealthChecker{
		"cache": apphttp.HealthCheckerFunc(func(context.Context) error { return errors.New("connection refused") }),
		"other": apphttp.HealthCheckerFunc(func(context.Context) error { return nil }),
	}))

	rec := serve(engine, http.MethodGet, "/api/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"cache":"down"`) || !strings.Contains(rec.Body.String(), `"other":"up"`) {
		t.Fatalf("unexpected readiness body %q", rec.Body.String())
	}
}

func TestReadinessWithoutChecksIsReady(t *testing.T) {
	rec := serve(New(newTestApp(nil)), http.MethodGet, "/api/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCORSConfigFallsBackToAllOriginsWithoutCredentials(t *testing.T) {
	cfg := corsConfig(&config.Config{CORSAllowCreds: true})
	if !cfg.AllowAllOrigins || cfg.AllowCredentials {
		t.Fatalf("expected allow-all without credentials, got %+v", cfg)
	}

	cfg = corsConfig(&config.Config{CORSOrigins: []string{"https://shop.example"}, CORSAllowCreds: true})
	if cfg.AllowAllOrigins || !cfg.AllowCredentials || len(cfg.AllowOrigins) != 1 {
		t.Fatalf("expected explicit origin with credentials, got %+v", cfg)
	}
}
