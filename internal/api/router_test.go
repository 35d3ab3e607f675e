package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, h HandlerSet) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRouter(nil, client, nil, RouterConfig{}, h)
}

func TestRouter_RootProbe(t *testing.T) {
	router := newTestRouter(t, HandlerSet{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Server is running"}`, rec.Body.String())
}

func TestRouter_DispatchesAPIRoutes(t *testing.T) {
	var called string
	mark := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			called = name
			w.WriteHeader(http.StatusOK)
		}
	}
	router := newTestRouter(t, HandlerSet{
		Chat:            mark("chat"),
		CropRecs:        mark("crops"),
		WeatherAnalysis: mark("analysis"),
		IndexDocuments:  mark("documents"),
	})

	routes := map[string]string{
		"/api/chat":                 "chat",
		"/api/crop-recommendations": "crops",
		"/api/weather-analysis":     "analysis",
		"/api/documents":            "documents",
	}
	for path, want := range routes {
		called = ""
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, want, called, "path %s", path)
	}
}

func TestRouter_SetsSecurityAndRequestIDHeaders(t *testing.T) {
	router := newTestRouter(t, HandlerSet{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_UnknownRouteIs404(t *testing.T) {
	router := newTestRouter(t, HandlerSet{})

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_LivenessProbe(t *testing.T) {
	router := newTestRouter(t, HandlerSet{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}
