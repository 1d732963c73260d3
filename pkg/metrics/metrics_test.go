package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"disabled", Disabled, false},
		{"BASIC", Basic, false},
		{"", Basic, false},
		{"detailed", Detailed, false},
		{"verbose", Disabled, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, s string) Level {
	t.Helper()
	l, err := ParseLevel(s)
	require.NoError(t, err)
	return l
}

func TestCounters(t *testing.T) {
	m := New(nil)

	m.RecordQuery()
	m.RecordQuery()
	m.RecordLookup()
	m.RecordValidationError()
	m.RecordNotFound()
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordSearch()
	m.RecordCartMutation()
	m.RecordStorageReadError()
	m.RecordStorageWriteError()
	m.RecordRequest(200, time.Millisecond)
	m.RecordRequest(404, time.Millisecond)
	m.RecordRequest(503, time.Millisecond)

	s := m.GetSnapshot()
	assert.Equal(t, "basic", s.Level)
	assert.Equal(t, uint64(2), s.Queries)
	assert.Equal(t, uint64(1), s.Lookups)
	assert.Equal(t, uint64(1), s.ValidationErrors)
	assert.Equal(t, uint64(1), s.NotFound)
	assert.InDelta(t, 0.75, s.CacheHitRatio, 1e-9)
	assert.Equal(t, uint64(1), s.Searches)
	assert.Equal(t, uint64(1), s.CartMutations)
	assert.Equal(t, uint64(1), s.StorageReadErrors)
	assert.Equal(t, uint64(1), s.StorageWriteErrors)
	assert.Equal(t, uint64(3), s.Requests)
	assert.Equal(t, uint64(1), s.ClientErrors)
	assert.Equal(t, uint64(1), s.ServerErrors)
	assert.Nil(t, s.Latency)

	m.Reset()
	assert.Equal(t, uint64(0), m.GetSnapshot().Queries)
}

func TestDisabledAndNil(t *testing.T) {
	m := New(&Config{Level: Disabled})
	m.RecordQuery()
	assert.Equal(t, uint64(0), m.GetSnapshot().Queries)

	m.SetLevel(Basic)
	m.RecordQuery()
	assert.Equal(t, uint64(1), m.GetSnapshot().Queries)

	var nilMetrics *Metrics
	nilMetrics.RecordQuery()
	nilMetrics.RecordRequest(500, time.Second)
	nilMetrics.SetLevel(Detailed)
	nilMetrics.Reset()
	assert.Equal(t, "disabled", nilMetrics.GetSnapshot().Level)
}

func TestDetailedLatency(t *testing.T) {
	m := New(&Config{Level: Detailed, LatencyBuckets: []time.Duration{10 * time.Millisecond, time.Millisecond}})
	m.RecordRequest(200, 500*time.Microsecond)
	m.RecordRequest(200, 5*time.Millisecond)
	m.RecordRequest(200, time.Second)

	s := m.GetSnapshot()
	require.NotNil(t, s.Latency)
	assert.Equal(t, []time.Duration{time.Millisecond, 10 * time.Millisecond}, s.Latency.Bounds)
	assert.Equal(t, []uint64{1, 2}, s.Latency.Cumulative)
	assert.Equal(t, uint64(3), s.Latency.Count)
	assert.Equal(t, time.Second, s.Latency.Max)

	data, err := m.JSON()
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "latency")
}

func TestConcurrentRecording(t *testing.T) {
	m := New(&Config{Level: Detailed})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.RecordQuery()
				m.RecordRequest(200, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	s := m.GetSnapshot()
	assert.Equal(t, uint64(8000), s.Queries)
	assert.Equal(t, uint64(8000), s.Latency.Count)
}

func TestPrometheusExport(t *testing.T) {
	m := New(&Config{Level: Detailed})
	m.RecordStorageReadError()
	m.RecordRequest(200, 2*time.Millisecond)

	p := NewPrometheusExporter(m, "test")
	p.RegisterGauge("cache_entries", "Entries in the query cache", func() float64 { return 7 })
	out := p.Export()

	assert.Contains(t, out, "# TYPE hivestore_storage_read_errors_total counter")
	assert.Contains(t, out, `hivestore_storage_read_errors_total{service="test"} 1`)
	assert.Contains(t, out, `hivestore_cache_entries{service="test"} 7`)
	assert.Contains(t, out, `hivestore_http_request_duration_seconds_bucket{service="test",le="+Inf"} 1`)

	p.SetPrefix("shop")
	assert.True(t, strings.Contains(p.Export(), "shop_queries_total"))

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}
