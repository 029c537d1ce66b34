// Package metrics holds the Prometheus collectors for the recipe API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector the service records to.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	RecipesCreated *prometheus.CounterVec
	RecipesUpdated prometheus.Counter
	RecipesDeleted prometheus.Counter
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	IngestEnqueued prometheus.Counter
	IngestFailures prometheus.Counter
	ImagesUploaded prometheus.Counter
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RecipesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipes_created_total",
			Help: "Recipes created, by source type.",
		}, []string{"source_type"}),
		RecipesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipes_updated_total",
			Help: "Recipe updates applied.",
		}),
		RecipesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipes_deleted_total",
			Help: "Recipes deleted.",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipe_cache_hits_total",
			Help: "Recipe reads served from the cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipe_cache_misses_total",
			Help: "Recipe reads that went to the database.",
		}),
		IngestEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipe_ingest_enqueued_total",
			Help: "Ingest jobs pushed to the queue.",
		}),
		IngestFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipe_ingest_failures_total",
			Help: "Ingest jobs that could not be queued.",
		}),
		ImagesUploaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipe_images_uploaded_total",
			Help: "Recipe images stored in object storage.",
		}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency. Routes are labelled with
// the matched pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// The helpers below accept a nil *Metrics so callers can run without
// instrumentation.

func (m *Metrics) RecipeCreated(sourceType string) {
	if m != nil {
		m.RecipesCreated.WithLabelValues(sourceType).Inc()
	}
}

func (m *Metrics) RecipeUpdated() {
	if m != nil {
		m.RecipesUpdated.Inc()
	}
}

func (m *Metrics) RecipeDeleted() {
	if m != nil {
		m.RecipesDeleted.Inc()
	}
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) IngestQueued() {
	if m != nil {
		m.IngestEnqueued.Inc()
	}
}

func (m *Metrics) IngestFailed() {
	if m != nil {
		m.IngestFailures.Inc()
	}
}

func (m *Metrics) ImageUploaded() {
	if m != nil {
		m.ImagesUploaded.Inc()
	}
}
