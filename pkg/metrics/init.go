package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func (r *Registry) initPipelineMetrics() {
	f := r.factory()
	r.ParsesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parses_total",
		Help:      "Total number of documents parsed, by diagram kind",
	}, []string{"kind"})
	r.ParseDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "parse_duration_seconds",
		Help:      "Parse latency in seconds",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
	})
	r.ParsedNodes = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "parsed_nodes",
		Help:      "Number of nodes per parsed document",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 1000},
	})
	r.LayoutsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "layouts_total",
		Help:      "Total number of layouts, by engine and status",
	}, []string{"engine", "status"})
	r.LayoutDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_duration_seconds",
		Help:      "Layout latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"engine"})
	r.LayoutsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "layouts_in_flight",
		Help:      "Layouts currently running",
	})
	r.RendersTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "Total number of renders, by format and status",
	}, []string{"format", "status"})
	r.RenderDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Render latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"format"})
}

func (r *Registry) initSyncMetrics() {
	f := r.factory()
	r.TextChangesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "text_changes_total",
		Help:      "Accepted text revisions, by origin and whether the canvas was rebuilt",
	}, []string{"origin", "relayout"})
	r.EchoSuppressedTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "echo_suppressed_total",
		Help:      "Text changes ignored because they matched the current text",
	})
	r.StaleRendersTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_renders_total",
		Help:      "Preview results dropped because a newer revision was shown",
	})
	r.OffsetCommitsTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offset_commits_total",
		Help:      "Completed drags on the rendered preview",
	})
	r.Revision = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_revision",
		Help:      "Most recent document revision seen",
	})
}

func (r *Registry) initCacheMetrics() {
	f := r.factory()
	r.CacheRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Cache lookups, by key type and result",
	}, []string{"key_type", "result"})
	r.CacheSetBytes = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cache_set_bytes",
		Help:      "Size of cached values in bytes",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"key_type"})
}

func (r *Registry) initHTTPMetrics() {
	f := r.factory()
	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	r.HTTPRequestsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Current number of HTTP requests being processed",
	})
}
