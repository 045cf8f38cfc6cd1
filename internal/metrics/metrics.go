// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// the funnel cache.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Builder struct {
	gatherer prometheus.Gatherer

	summaryVec *prometheus.SummaryVec
	counterVec *prometheus.CounterVec

	refreshVec *prometheus.CounterVec
	cacheVec   *prometheus.CounterVec
}

// NewBuilder registers every collector on reg.
func NewBuilder(reg *prometheus.Registry) *Builder {
	factory := promauto.With(reg)

	summaryVec := factory.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.005,
				0.99: 0.001,
			},
		},
		[]string{"method", "path", "status_code"},
	)

	counterVec := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	refreshVec := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_funnel_refresh_total",
			Help: "Funnel report recomputations by view and outcome",
		},
		[]string{"view", "outcome"},
	)

	cacheVec := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_funnel_cache_lookups_total",
			Help: "Funnel cache lookups by result",
		},
		[]string{"result"},
	)

	return &Builder{
		gatherer:   reg,
		summaryVec: summaryVec,
		counterVec: counterVec,
		refreshVec: refreshVec,
		cacheVec:   cacheVec,
	}
}

// Build returns the gin middleware recording request count and latency.
func (b *Builder) Build() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		duration := time.Since(start).Seconds()

		method := ctx.Request.Method
		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusCode := strconv.Itoa(ctx.Writer.Status())

		b.summaryVec.WithLabelValues(method, path, statusCode).Observe(duration)
		b.counterVec.WithLabelValues(method, path, statusCode).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (b *Builder) Handler() http.Handler {
	return promhttp.HandlerFor(b.gatherer, promhttp.HandlerOpts{})
}

// FunnelRefreshed counts one recomputation of view.
func (b *Builder) FunnelRefreshed(view string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	b.refreshVec.WithLabelValues(view, outcome).Inc()
}

// FunnelCacheLookup counts one cache lookup.
func (b *Builder) FunnelCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	b.cacheVec.WithLabelValues(result).Inc()
}
