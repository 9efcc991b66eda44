package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contentsite"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	storeQueries  *prom.HistogramVec
	storeErrors   *prom.CounterVec
	resolves      *prom.CounterVec
	redirects     *prom.CounterVec
	globalCache   *prom.CounterVec
	archiveCache  *prom.CounterVec
	exportedPages *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		storeQueries: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "store_query_duration_seconds",
			Help:      "Duration of document store queries",
			Buckets:   prom.DefBuckets,
		}, []string{"collection"}),
		storeErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "store_query_errors_total",
			Help:      "Failed document store queries",
		}, []string{"collection"}),
		resolves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_total",
			Help:      "Slug resolutions by outcome",
		}, []string{"collection", "outcome"}),
		redirects: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "redirect_lookups_total",
			Help:      "Redirect fallback lookups by result",
		}, []string{"result"}),
		globalCache: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "global_cache_total",
			Help:      "Global singleton cache lookups by result",
		}, []string{"key", "result"}),
		archiveCache: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "archive_cache_total",
			Help:      "Post archive cache lookups by result",
		}, []string{"result"}),
		exportedPages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "export_pages_total",
			Help:      "Statically exported pages by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.storeQueries, pr.storeErrors, pr.resolves, pr.redirects, pr.globalCache, pr.archiveCache, pr.exportedPages)
	return pr
}

func (p *PrometheusRecorder) ObserveStoreQuery(collection string, d time.Duration, err error) {
	if p == nil {
		return
	}
	p.storeQueries.WithLabelValues(collection).Observe(d.Seconds())
	if err != nil {
		p.storeErrors.WithLabelValues(collection).Inc()
	}
}

func (p *PrometheusRecorder) IncResolve(collection, outcome string) {
	if p == nil {
		return
	}
	p.resolves.WithLabelValues(collection, outcome).Inc()
}

func (p *PrometheusRecorder) IncRedirect(found bool) {
	if p == nil {
		return
	}
	p.redirects.WithLabelValues(resultLabel(found, "found", "missing")).Inc()
}

func (p *PrometheusRecorder) IncGlobalCache(key, result string) {
	if p == nil {
		return
	}
	p.globalCache.WithLabelValues(key, result).Inc()
}

func (p *PrometheusRecorder) IncArchiveCache(result string) {
	if p == nil {
		return
	}
	p.archiveCache.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncExportPage(success bool) {
	if p == nil {
		return
	}
	p.exportedPages.WithLabelValues(resultLabel(success, "success", "failed")).Inc()
}

func resultLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// HTTPHandler serves the metrics registered on reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
