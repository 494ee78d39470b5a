package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Prometheus is a Recorder backed by its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	refreshTotal    *prometheus.CounterVec
	retriesTotal    prometheus.Counter
	rejectedTotal   prometheus.Counter
	redirectsTotal  *prometheus.CounterVec
	suppressedTotal *prometheus.CounterVec
}

// NewPrometheus creates a Prometheus recorder with all pipeline
// collectors registered.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authkit",
			Name:      "refresh_total",
			Help:      "Finished token refresh exchanges by outcome.",
		}, []string{"result"}),
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authkit",
			Name:      "request_retries_total",
			Help:      "Requests replayed after a successful refresh.",
		}),
		rejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authkit",
			Name:      "requests_rejected_total",
			Help:      "Requests rejected before send for lack of a stored token.",
		}),
		redirectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authkit",
			Name:      "redirects_total",
			Help:      "Dispatched session redirects by target.",
		}, []string{"target"}),
		suppressedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authkit",
			Name:      "redirects_suppressed_total",
			Help:      "Redirects dropped by the in-flight guard by target.",
		}, []string{"target"}),
	}

	p.registry.MustRegister(
		p.refreshTotal,
		p.retriesTotal,
		p.rejectedTotal,
		p.redirectsTotal,
		p.suppressedTotal,
	)

	return p
}

// WithGoCollectorRuntimeMetrics adds the Go runtime collector.
func (p *Prometheus) WithGoCollectorRuntimeMetrics() {
	p.registry.MustRegister(collectors.NewGoCollector())
}

// WithBuildInfoCollector adds the build info collector.
func (p *Prometheus) WithBuildInfoCollector() {
	p.registry.MustRegister(collectors.NewBuildInfoCollector())
}

// Registry exposes the registry for scraping.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) RefreshCompleted(result string) {
	p.refreshTotal.WithLabelValues(result).Inc()
}

func (p *Prometheus) RetryPerformed() {
	p.retriesTotal.Inc()
}

func (p *Prometheus) RequestRejected() {
	p.rejectedTotal.Inc()
}

func (p *Prometheus) RedirectTriggered(target string) {
	p.redirectsTotal.WithLabelValues(target).Inc()
}

func (p *Prometheus) RedirectSuppressed(target string) {
	p.suppressedTotal.WithLabelValues(target).Inc()
}
