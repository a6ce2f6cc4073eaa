package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/database/postgres/repositories"
)

var (
	_ coverage.Metrics             = (*AppMetrics)(nil)
	_ repositories.QueryObserver = (*AppMetrics)(nil)
)

func TestAppMetrics_Coverage(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.ObserveComputation("country", "ok", 20*time.Millisecond)
	m.ObserveComputation("country", "ok", 30*time.Millisecond)
	m.CacheRequest("hit")
	m.CacheInvalidation("platform")
	m.FounderFallbackHit()
	m.SnapshotPublished("kafka", "error")

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_computations_total{kind="country",status="ok"} 2`)
	assert.Contains(t, out, `test_unit_computation_duration_seconds_count{kind="country"} 2`)
	assert.Contains(t, out, `test_unit_cache_requests_total{result="hit"} 1`)
	assert.Contains(t, out, `test_unit_cache_invalidations_total{scope="platform"} 1`)
	assert.Contains(t, out, "test_unit_founder_title_fallback_total 1")
	assert.Contains(t, out, `test_unit_snapshots_published_total{sink="kafka",status="error"} 1`)
}

func TestAppMetrics_StoreAndHTTP(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.ObserveQuery("list_platforms", "ok", time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/v1/platforms", 200, 5*time.Millisecond)
	done := m.TrackInFlight()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_store_queries_total{operation="list_platforms",status="ok"} 1`)
	assert.Contains(t, out, `test_unit_http_requests_total{method="GET",path="/api/v1/platforms",status="200"} 1`)
	assert.Contains(t, out, "test_unit_http_active_requests 1")

	done()
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_http_active_requests 0")
}
