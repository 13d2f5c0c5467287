package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorybank/internal/adapters/cache"
	"memorybank/internal/adapters/reader"
	"memorybank/internal/domain"
)

type stubCache struct{ s cache.Stats }

func (c stubCache) Stats() cache.Stats { return c.s }

type stubReader struct{ s reader.Stats }

func (r stubReader) Stats() reader.Stats { return r.s }

type stubHealth struct{ r domain.HealthCheckResult }

func (h stubHealth) CheckHealth(context.Context) domain.HealthCheckResult { return h.r }

func newTestCollector() *Collector {
	return NewCollector(
		stubCache{cache.Stats{Hits: 7, Misses: 3, Evictions: 2, Reloads: 1, HitRate: 0.7, CurrentSize: 5, MaxSize: 100}},
		stubReader{reader.Stats{
			StreamedReads:        2,
			BufferedReads:        9,
			CacheHits:            4,
			AvgStreamingDuration: 1500 * time.Millisecond,
			TotalBytesRead:       4096,
			LargestStreamedFile:  2 << 20,
			BackpressurePauses:   6,
			Failures:             1,
			Timeouts:             1,
			DroppedSettlements:   1,
		}},
		stubHealth{domain.HealthCheckResult{Issues: []string{"a", "b"}, Summary: "2 issue(s) found"}},
	)
}

func TestCollector_Count(t *testing.T) {
	// 7 cache metrics, 11 reader series, 2 health gauges
	assert.Equal(t, 20, testutil.CollectAndCount(newTestCollector()))
}

func TestCollector_NilSources(t *testing.T) {
	c := NewCollector(nil, nil, nil)
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}

func TestCollector_Values(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(newTestCollector()))

	expected := `
# HELP memorybank_cache_hits_total Cache lookups served from memory
# TYPE memorybank_cache_hits_total counter
memorybank_cache_hits_total 7
# HELP memorybank_reads_total Completed reads by strategy
# TYPE memorybank_reads_total counter
memorybank_reads_total{strategy="buffered"} 9
memorybank_reads_total{strategy="cache"} 4
memorybank_reads_total{strategy="streaming"} 2
# HELP memorybank_read_duration_seconds_avg Running average read duration by strategy
# TYPE memorybank_read_duration_seconds_avg gauge
memorybank_read_duration_seconds_avg{strategy="buffered"} 0
memorybank_read_duration_seconds_avg{strategy="streaming"} 1.5
# HELP memorybank_healthy 1 when every document is present
# TYPE memorybank_healthy gauge
memorybank_healthy 0
# HELP memorybank_health_issues Issues found by the last health check
# TYPE memorybank_health_issues gauge
memorybank_health_issues 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"memorybank_cache_hits_total",
		"memorybank_reads_total",
		"memorybank_read_duration_seconds_avg",
		"memorybank_healthy",
		"memorybank_health_issues",
	)
	assert.NoError(t, err)
}

func TestCollector_HealthyGauge(t *testing.T) {
	c := NewCollector(nil, nil, stubHealth{domain.HealthCheckResult{IsHealthy: true}})
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		values[mf.GetName()] = mf.GetMetric()[0].GetGauge().GetValue()
	}
	assert.Equal(t, 1.0, values["memorybank_healthy"])
	assert.Equal(t, 0.0, values["memorybank_health_issues"])
}

func TestHandler(t *testing.T) {
	h, err := Handler(newTestCollector())
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "memorybank_cache_entries 5")
	assert.Contains(t, string(body), "go_goroutines")
}
