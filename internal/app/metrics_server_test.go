package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/stockroom/internal/jobs"
	"github.com/odyssey-erp/stockroom/internal/observability"
)

func TestMetricsServerExposesJobMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	jobs := jobmetrics.NewMetrics(metrics.Registerer())
	jobs.SetStockLevels(map[string]int{"low_stock": 2}, "out_of_stock", "low_stock", "in_stock")
	_ = jobs.Track("inventory:low_stock_scan").End(nil)

	srv := NewMetricsServer(":0", metrics)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, `stockroom_inventory_items{status="low_stock"} 2`)
	require.Contains(t, body, `stockroom_inventory_items{status="out_of_stock"} 0`)
	require.Contains(t, body, "stockroom_low_stock_scan_timestamp_seconds")
	require.Contains(t, body, `stockroom_jobs_total{job="inventory:low_stock_scan",status="success"} 1`)

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}
