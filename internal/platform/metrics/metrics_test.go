package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest(http.MethodGet, "/x", 200, time.Millisecond)
		m.RecordOp("create", "ok")
		m.AccessCode("issue", "ok")
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "", 404, time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/pets/{petID}/records", 201, time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/pets/{petID}/records", 201, time.Millisecond)
	m.RecordOp("update", "forbidden")
	m.AccessCode("validate", "ok")

	body := scrape(t, m)
	assert.Contains(t, body, `vetclinic_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, `vetclinic_http_requests_total{method="POST",route="/pets/{petID}/records",status="201"} 2`)
	assert.Contains(t, body, `vetclinic_record_operations_total{op="update",outcome="forbidden"} 1`)
	assert.Contains(t, body, `vetclinic_access_code_events_total{event="validate",outcome="ok"} 1`)
}

func TestHandlerExposesOwnRegistry(t *testing.T) {
	a, b := New(), New()
	a.RecordOp("create", "ok")

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `vetclinic_record_operations_total{op="create",outcome="ok"} 1`))

	rec = httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.False(t, strings.Contains(rec.Body.String(), `vetclinic_record_operations_total{op="create"`))
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
