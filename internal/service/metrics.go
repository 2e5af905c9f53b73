package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry,
// so several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	pagesAnalyzed   *prometheus.CounterVec
	crawlPages      prometheus.Histogram
	crawlQueued     prometheus.Histogram
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lingoscan",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lingoscan",
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"method", "route"},
		),
		pagesAnalyzed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lingoscan",
				Name:      "pages_analyzed_total",
				Help:      "Pages analyzed, by origin endpoint and result.",
			},
			[]string{"origin", "result"},
		),
		crawlPages: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "lingoscan",
				Name:      "crawl_pages",
				Help:      "Pages found per crawl.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		crawlQueued: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "lingoscan",
				Name:      "crawl_urls_queued",
				Help:      "Unique URLs scheduled per crawl.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.pagesAnalyzed,
		m.crawlPages,
		m.crawlQueued,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) observeItems(origin string, failed, succeeded int) {
	if succeeded > 0 {
		m.pagesAnalyzed.WithLabelValues(origin, "ok").Add(float64(succeeded))
	}
	if failed > 0 {
		m.pagesAnalyzed.WithLabelValues(origin, "error").Add(float64(failed))
	}
}
