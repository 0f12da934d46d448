package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/kahuna/internal/metrics"
)

func TestHandler_ExposesRecordedMetrics(t *testing.T) {
	metrics.RecordGatewayRequest("search", 200, 10*time.Millisecond)
	metrics.RecordWalk(2)
	metrics.RecordCropSubmission("success")
	metrics.SetSearchSessions(3)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		"kahuna_gateway_requests_total",
		"kahuna_search_walk_pages",
		"kahuna_crop_submissions_total",
		"kahuna_search_sessions_active 3",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}

func TestMiddleware_PassesThrough(t *testing.T) {
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, "brewing")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "brewing" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
