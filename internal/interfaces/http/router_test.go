package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/coverage-intelligence/internal/testutil"
)

type recordedRequest struct {
	method, path string
	status       int
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	inFlight int
}

func (f *fakeRecorder) RecordHTTPRequest(method, path string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method, path, status})
}

func (f *fakeRecorder) TrackInFlight() func() {
	f.mu.Lock()
	f.inFlight++
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}
}

func newTestRouter(svc coverage.Service, mutate ...func(*RouterConfig)) http.Handler {
	cfg := RouterConfig{
		CoverageHandler: handlers.NewCoverageHandler(svc, nil),
		HealthHandler:   handlers.NewHealthHandler("test"),
		Logging:         middleware.DefaultLoggingConfig(),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewRouter(cfg)
}

func serve(h http.Handler, method, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	svc := &testutil.StubCoverageService{}
	r := newTestRouter(svc)

	tests := []struct {
		method, target, call string
	}{
		{http.MethodGet, "/api/v1/platforms", "ListPlatforms"},
		{http.MethodGet, "/api/v1/platforms/lawyers/coverage", "GetGlobalCoverage"},
		{http.MethodGet, "/api/v1/platforms/lawyers/countries", "ListCountriesWithScores"},
		{http.MethodGet, "/api/v1/platforms/lawyers/countries/vn", "GetCountryDetails"},
		{http.MethodGet, "/api/v1/platforms/lawyers/countries/vn/score", "GetCountryScore"},
		{http.MethodGet, "/api/v1/platforms/lawyers/languages", "GetLanguageStats"},
		{http.MethodGet, "/api/v1/platforms/lawyers/recommendations", "GetGlobalRecommendations"},
		{http.MethodDelete, "/api/v1/platforms/lawyers/cache", "InvalidateCache"},
		{http.MethodDelete, "/api/v1/cache", "InvalidateAllCache"},
	}
	for i, tt := range tests {
		t.Run(tt.call, func(t *testing.T) {
			w := serve(r, tt.method, tt.target)
			assert.Equal(t, http.StatusOK, w.Code)
			calls := svc.Calls()
			require.Len(t, calls, i+1)
			assert.Equal(t, tt.call, calls[i])
		})
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestRouter(&testutil.StubCoverageService{})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/readyz").Code)
	w := serve(r, http.MethodGet, "/metrics")
	assert.Equal(t, "# metrics", w.Body.String())
}

func TestRouter_UnknownRouteAndMethod(t *testing.T) {
	r := newTestRouter(&testutil.StubCoverageService{})

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/nothing").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodPost, "/api/v1/platforms").Code)
}

func TestRouter_RequestID(t *testing.T) {
	r := newTestRouter(&testutil.StubCoverageService{})

	w := serve(r, http.MethodGet, "/api/v1/platforms")
	assert.Len(t, w.Header().Get(middleware.HeaderRequestID), 36)

	w = serve(r, http.MethodGet, "/api/v1/platforms", middleware.HeaderRequestID, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(middleware.HeaderRequestID))
}

func TestRouter_MetricsUseRoutePattern(t *testing.T) {
	rec := &fakeRecorder{}
	r := newTestRouter(&testutil.StubCoverageService{}, func(c *RouterConfig) { c.Recorder = rec })

	serve(r, http.MethodGet, "/api/v1/platforms/lawyers/countries/vn/score")

	require.Len(t, rec.requests, 1)
	assert.Equal(t, "/api/v1/platforms/{platformID}/countries/{countryID}/score", rec.requests[0].path)
	assert.Equal(t, http.StatusOK, rec.requests[0].status)
	assert.Equal(t, 0, rec.inFlight)
}

func TestRouter_RateLimit(t *testing.T) {
	r := newTestRouter(&testutil.StubCoverageService{}, func(c *RouterConfig) {
		c.RateLimit = 2
		c.RateLimitEvery = time.Minute
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/platforms").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/platforms").Code)
	w := serve(r, http.MethodGet, "/api/v1/platforms")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "COMMON_")

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz").Code, "probes are not limited")
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter(&testutil.StubCoverageService{}, func(c *RouterConfig) {
		c.CORSOrigins = []string{"https://dashboard.example.com"}
	})

	w := serve(r, http.MethodOptions, "/api/v1/platforms",
		"Origin", "https://dashboard.example.com",
		"Access-Control-Request-Method", http.MethodGet)
	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/api/v1/platforms", "Origin", "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := NewServer(serverConfigForTest(), newTestRouter(&testutil.StubCoverageService{}), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
