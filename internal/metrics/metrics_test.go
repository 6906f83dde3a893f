package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersAll(t *testing.T) {
	m := New()

	m.LoginSuccessTotal.Inc()
	m.LoginFailedTotal.Inc()
	m.AccessDeniedTotal.WithLabelValues("MAINTENANCE_MODE").Inc()
	m.ActivityAppendedTotal.WithLabelValues("UPLOAD").Inc()
	m.ActivityDroppedTotal.Inc()
	m.ActivitySubscribers.Set(2)

	if got := testutil.ToFloat64(m.LoginSuccessTotal); got != 1 {
		t.Errorf("LoginSuccessTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AccessDeniedTotal.WithLabelValues("MAINTENANCE_MODE")); got != 1 {
		t.Errorf("AccessDeniedTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ActivitySubscribers); got != 2 {
		t.Errorf("ActivitySubscribers = %v, want 2", got)
	}
}

func TestHTTPMiddlewareRecordsPattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Get("/characters/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/characters/abc-123", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/characters/{id}", "200"))
	if got != 1 {
		t.Errorf("RequestsTotal for pattern = %v, want 1", got)
	}
}
