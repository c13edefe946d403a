package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var msBuckets = []float64{0.1, 0.5, 1, 5, 10, 20, 50, 100, 200, 500, 1000}

var (
	ClassifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "medzone_classify_total",
		Help: "Point classifications by result (hit/miss)",
	}, []string{"result"})
	ClassifyDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "medzone_classify_duration_ms",
		Help:    "Point classification duration in milliseconds (uncached)",
		Buckets: msBuckets,
	})
	ClassifyCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "medzone_classify_cache_hits_total",
		Help: "In-process classification cache hits",
	})
	CatalogZones = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "medzone_catalog_zones",
		Help: "Active zones in the current catalog snapshot",
	})
	AddressClassifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "medzone_address_classify_total",
		Help: "Address classifications by fallback tier",
	}, []string{"tier"})
	NearbyRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "medzone_nearby_requests_total",
		Help: "Total nearby searches",
	})
	NearbyResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "medzone_nearby_results",
		Help:    "Records returned per nearby search",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500},
	})
	NearbyDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "medzone_nearby_duration_ms",
		Help:    "Nearby search duration in milliseconds",
		Buckets: msBuckets,
	})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "medzone_redis_hits_total",
		Help: "Total redis cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "medzone_redis_misses_total",
		Help: "Total redis cache misses",
	})
	BatchRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "medzone_batch_runs_total",
		Help: "Zone assignment batch runs by status (ok/partial/failed)",
	}, []string{"status"})
	BatchRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "medzone_batch_records_total",
		Help: "Records processed by batch runs by outcome (assigned/unassigned/error)",
	}, []string{"outcome"})
	BatchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "medzone_batch_duration_ms",
		Help:    "Batch run duration in milliseconds including commit",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000},
	})
	ProbeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "medzone_probe_total",
		Help: "Dependency probe heartbeats by status",
	}, []string{"probe", "status"})
)

func init() {
	prometheus.MustRegister(
		ClassifyTotal,
		ClassifyDurationMs,
		ClassifyCacheHitsTotal,
		CatalogZones,
		AddressClassifyTotal,
		NearbyRequestsTotal,
		NearbyResults,
		NearbyDurationMs,
		RedisHitsTotal,
		RedisMissesTotal,
		BatchRunsTotal,
		BatchRecordsTotal,
		BatchDurationMs,
		ProbeTotal,
	)
}

// 文档注释：返回 Prometheus 指标监听器，在主入口挂载到 API 前缀下
func Handler() http.Handler { return promhttp.Handler() }
