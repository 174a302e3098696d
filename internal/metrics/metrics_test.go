package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInitializeMetrics(t *testing.T) {
	// Must not panic and must leave known series registered.
	InitializeMetrics()

	srv := NewServer("0")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /metrics, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"webvideoa_scheduler_items_processed_total",
		"webvideoa_transcode_variants_total",
		"webvideoa_range_requests_total",
		"webvideoa_db_queries_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected metric %s in /metrics output", want)
		}
	}
}

func TestNewServerAddr(t *testing.T) {
	srv := NewServer("9090")
	if srv.Addr != ":9090" {
		t.Errorf("Expected addr :9090, got %s", srv.Addr)
	}
}
