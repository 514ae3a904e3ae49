package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/observability"
)

func newTestRouter(t *testing.T, checks map[string]HealthCheck) (http.Handler, *observability.Metrics) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	repo := inventory.NewMemoryRepository()
	svc := inventory.NewService(repo, logger, metrics)
	presenter := inventory.NewPresenter(repo, inventory.NewThresholds(5, nil))
	return NewRouter(RouterParams{
		Logger:           logger,
		Config:           &Config{AppEnv: "test", RateLimitPerMinute: 1000},
		InventoryHandler: inventory.NewHandler(logger, svc, presenter),
		Metrics:          metrics,
		HealthChecks:     checks,
	}), metrics
}

func TestRouterServesInventoryAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	body := `{"sku":"A1","name":"Anchor","category":"Fasteners","quantity":3,"location":"B-01","unitCost":2,"unitPrice":5,"supplier":"Bolt Co"}`
	req := httptest.NewRequest(http.MethodPost, "/api/inventory/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `stockroom_inventory_mutations_total{op="add",outcome="ok"} 1`)
	require.Contains(t, rr.Body.String(), `route="/api/inventory/items"`)
}

func TestRouterUnknownRouteIsProblem(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestHealthzReportsDependencies(t *testing.T) {
	router, _ := newTestRouter(t, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "degraded", body.Status)
	require.Equal(t, "ok", body.Checks["postgres"])
	require.Equal(t, "connection refused", body.Checks["redis"])
}
