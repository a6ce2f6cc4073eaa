package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness(t *testing.T) {
	h := NewHealthHandler("1.2.3", NewCheck("db", func(context.Context) error { return errors.New("down") }))
	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var out LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "alive", out.Status)
	assert.Equal(t, "1.2.3", out.Version)
}

func TestReadiness_NoCheckers(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthHandler("v").Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadiness_AllHealthy(t *testing.T) {
	ok := func(context.Context) error { return nil }
	h := NewHealthHandler("v", NewCheck("postgres", ok), NewCheck("redis", ok))
	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var out ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "ready", out.Status)
	assert.Len(t, out.Components, 2)
}

func TestReadiness_OneUnhealthy(t *testing.T) {
	h := NewHealthHandler("v",
		NewCheck("postgres", func(context.Context) error { return nil }),
		NewCheck("redis", func(context.Context) error { return errors.New("connection refused") }),
	)
	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var out ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "not_ready", out.Status)
	assert.Equal(t, "unhealthy", out.Components["redis"].Status)
	assert.Equal(t, "connection refused", out.Components["redis"].Error)
	assert.Equal(t, "healthy", out.Components["postgres"].Status)
}
