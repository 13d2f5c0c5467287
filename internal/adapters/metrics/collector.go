// Package metrics exposes cache, reader and health telemetry to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"memorybank/internal/adapters/cache"
	"memorybank/internal/adapters/reader"
	"memorybank/internal/domain"
)

const namespace = "memorybank"

// CacheSource provides cache counters
type CacheSource interface {
	Stats() cache.Stats
}

// ReaderSource provides reader telemetry
type ReaderSource interface {
	Stats() reader.Stats
}

// HealthSource checks the memory bank on disk
type HealthSource interface {
	CheckHealth(ctx context.Context) domain.HealthCheckResult
}

// Collector turns stats snapshots into metrics on every scrape. Any source
// may be nil.
type Collector struct {
	cache  CacheSource
	reader ReaderSource
	health HealthSource

	cacheHits       *prometheus.Desc
	cacheMisses     *prometheus.Desc
	cacheEvictions  *prometheus.Desc
	cacheReloads    *prometheus.Desc
	cacheSize       *prometheus.Desc
	cacheMaxSize    *prometheus.Desc
	cacheHitRate    *prometheus.Desc
	reads           *prometheus.Desc
	readDuration    *prometheus.Desc
	bytesRead       *prometheus.Desc
	largestStreamed *prometheus.Desc
	pauses          *prometheus.Desc
	failures        *prometheus.Desc
	timeouts        *prometheus.Desc
	droppedSettles  *prometheus.Desc
	healthy         *prometheus.Desc
	healthIssues    *prometheus.Desc
}

// NewCollector creates a collector over the given sources
func NewCollector(c CacheSource, r ReaderSource, h HealthSource) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		cache:  c,
		reader: r,
		health: h,

		cacheHits:       desc("cache_hits_total", "Cache lookups served from memory"),
		cacheMisses:     desc("cache_misses_total", "Cache lookups that missed or found stale content"),
		cacheEvictions:  desc("cache_evictions_total", "Entries removed for capacity or age"),
		cacheReloads:    desc("cache_reloads_total", "Updates of already cached keys"),
		cacheSize:       desc("cache_entries", "Entries currently cached"),
		cacheMaxSize:    desc("cache_max_entries", "Cache capacity"),
		cacheHitRate:    desc("cache_hit_ratio", "Hits divided by lookups since the last reset"),
		reads:           desc("reads_total", "Completed reads by strategy", "strategy"),
		readDuration:    desc("read_duration_seconds_avg", "Running average read duration by strategy", "strategy"),
		bytesRead:       desc("read_bytes_total", "Bytes read from disk"),
		largestStreamed: desc("largest_streamed_file_bytes", "Size of the largest file read by streaming"),
		pauses:          desc("backpressure_pauses_total", "Backpressure pauses during streaming"),
		failures:        desc("read_failures_total", "Failed reads"),
		timeouts:        desc("read_timeouts_total", "Reads settled by their timeout"),
		droppedSettles:  desc("dropped_settlements_total", "Completion signals ignored after a read settled"),
		healthy:         desc("healthy", "1 when every document is present"),
		healthIssues:    desc("health_issues", "Issues found by the last health check"),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.cacheHits, c.cacheMisses, c.cacheEvictions, c.cacheReloads, c.cacheSize, c.cacheMaxSize, c.cacheHitRate,
		c.reads, c.readDuration, c.bytesRead, c.largestStreamed, c.pauses, c.failures, c.timeouts, c.droppedSettles,
		c.healthy, c.healthIssues,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}
	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	if c.cache != nil {
		s := c.cache.Stats()
		counter(c.cacheHits, float64(s.Hits))
		counter(c.cacheMisses, float64(s.Misses))
		counter(c.cacheEvictions, float64(s.Evictions))
		counter(c.cacheReloads, float64(s.Reloads))
		gauge(c.cacheSize, float64(s.CurrentSize))
		gauge(c.cacheMaxSize, float64(s.MaxSize))
		gauge(c.cacheHitRate, s.HitRate)
	}

	if c.reader != nil {
		s := c.reader.Stats()
		counter(c.reads, float64(s.StreamedReads), string(reader.StrategyStreaming))
		counter(c.reads, float64(s.BufferedReads), string(reader.StrategyBuffered))
		counter(c.reads, float64(s.CacheHits), "cache")
		gauge(c.readDuration, s.AvgStreamingDuration.Seconds(), string(reader.StrategyStreaming))
		gauge(c.readDuration, s.AvgBufferedDuration.Seconds(), string(reader.StrategyBuffered))
		counter(c.bytesRead, float64(s.TotalBytesRead))
		gauge(c.largestStreamed, float64(s.LargestStreamedFile))
		counter(c.pauses, float64(s.BackpressurePauses))
		counter(c.failures, float64(s.Failures))
		counter(c.timeouts, float64(s.Timeouts))
		counter(c.droppedSettles, float64(s.DroppedSettlements))
	}

	if c.health != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res := c.health.CheckHealth(ctx)
		v := 0.0
		if res.IsHealthy {
			v = 1
		}
		gauge(c.healthy, v)
		gauge(c.healthIssues, float64(len(res.Issues)))
	}
}

// Handler registers the collector on a fresh registry with the Go runtime
// collectors and returns the scrape handler.
func Handler(c *Collector) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	if err := reg.Register(prometheus.NewGoCollector()); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}
