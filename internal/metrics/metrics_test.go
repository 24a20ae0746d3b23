package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(m *Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/get-initial-data", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"ok"`))
	})
	return r
}

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	m := New()
	handler := newRouter(m)

	for _, path := range []string{"/a", "/b/c", "/api/comments"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	req := httptest.NewRequest(http.MethodGet, "/get-initial-data", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("/*", http.MethodPost, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/get-initial-data", http.MethodGet, "200")))
}

func TestMiddleware_Unmatched(t *testing.T) {
	m := New()
	handler := newRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var routes []string
	for _, mf := range families {
		if mf.GetName() != "dslhost_http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" {
					routes = append(routes, label.GetValue())
				}
			}
		}
	}
	assert.Equal(t, []string{unmatchedRoute}, routes)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	handler := newRouter(m)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dslhost_http_requests_total")
	assert.Contains(t, w.Body.String(), "dslhost_http_request_duration_seconds")
}
