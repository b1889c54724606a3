// Package metrics exports the observability hooks as Prometheus
// collectors.
//
// A [Registry] implements every hook interface of pkg/observability.
// Install registers it globally; Handler serves the collected metrics:
//
//	reg := metrics.NewRegistry()
//	reg.Install()
//	router.Handle("/metrics", reg.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mermedit/pkg/observability"
)

const namespace = "mermedit"

// Registry holds the Prometheus collectors for one process.
type Registry struct {
	registry *prometheus.Registry

	ParsesTotal     *prometheus.CounterVec
	ParseDuration   prometheus.Histogram
	ParsedNodes     prometheus.Histogram
	LayoutsTotal    *prometheus.CounterVec
	LayoutDuration  *prometheus.HistogramVec
	LayoutsInFlight prometheus.Gauge
	RendersTotal    *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec

	TextChangesTotal    *prometheus.CounterVec
	EchoSuppressedTotal prometheus.Counter
	StaleRendersTotal   prometheus.Counter
	OffsetCommitsTotal  prometheus.Counter
	Revision            prometheus.Gauge

	CacheRequestsTotal *prometheus.CounterVec
	CacheSetBytes      *prometheus.HistogramVec

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

// NewRegistry creates a registry with all collectors registered, plus the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.initPipelineMetrics()
	r.initSyncMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// Install registers r as the global pipeline, sync, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetSyncHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Pipeline hooks.

func (r *Registry) OnParseStart(context.Context) {}

func (r *Registry) OnParseComplete(_ context.Context, kind string, nodeCount int, d time.Duration) {
	r.ParsesTotal.WithLabelValues(kind).Inc()
	r.ParseDuration.Observe(d.Seconds())
	r.ParsedNodes.Observe(float64(nodeCount))
}

func (r *Registry) OnLayoutStart(context.Context, string, int) {
	r.LayoutsInFlight.Inc()
}

func (r *Registry) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	r.LayoutsInFlight.Dec()
	r.LayoutsTotal.WithLabelValues(engine, status(err)).Inc()
	r.LayoutDuration.WithLabelValues(engine).Observe(d.Seconds())
}

func (r *Registry) OnRenderStart(context.Context, string) {}

func (r *Registry) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	r.RendersTotal.WithLabelValues(format, status(err)).Inc()
	r.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
}

// Sync hooks.

func (r *Registry) OnTextChange(origin string, revision uint64, relayout bool) {
	r.TextChangesTotal.WithLabelValues(origin, strconv.FormatBool(relayout)).Inc()
	r.Revision.Set(float64(revision))
}

func (r *Registry) OnEchoSuppressed()    { r.EchoSuppressedTotal.Inc() }
func (r *Registry) OnStaleRender(uint64) { r.StaleRendersTotal.Inc() }
func (r *Registry) OnOffsetCommit(int)   { r.OffsetCommitsTotal.Inc() }

// Cache hooks.

func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheSetBytes.WithLabelValues(keyType).Observe(float64(size))
}

// HTTP hooks.

func (r *Registry) OnRequest(context.Context, string, string) {
	r.HTTPRequestsInFlight.Inc()
}

func (r *Registry) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	s := strconv.Itoa(code)
	r.HTTPRequestsTotal.WithLabelValues(method, route, s).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route, s).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.SyncHooks     = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)

func (r *Registry) factory() promauto.Factory { return promauto.With(r.registry) }
