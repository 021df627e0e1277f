// Package metrics exposes recovery service counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kapu_recovery"

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeDenied   = "denied"
	OutcomeLimited  = "limited"
	OutcomeError    = "error"
)

// Prometheus records service metrics on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	kdf        *prometheus.HistogramVec
	purged     prometheus.Counter
}

// New creates the collectors and registers them together with the Go runtime collectors.
func New() *Prometheus {
	reg := prometheus.NewRegistry()

	p := &Prometheus{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Recovery operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		kdf: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kdf_duration_seconds",
			Help:      "Time spent in key derivation plus cipher work.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"operation"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_backups_purged_total",
			Help:      "Backups removed by the janitor after expiry.",
		}),
	}

	reg.MustRegister(
		p.operations, p.kdf, p.purged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return p
}

// Operation counts one finished operation.
func (p *Prometheus) Operation(name, outcome string) {
	p.operations.WithLabelValues(name, outcome).Inc()
}

// CipherDuration observes a cipher call.
func (p *Prometheus) CipherDuration(name string, d time.Duration) {
	p.kdf.WithLabelValues(name).Observe(d.Seconds())
}

// Purged counts backups removed by the janitor.
func (p *Prometheus) Purged(n int) {
	p.purged.Add(float64(n))
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Noop discards every observation.
type Noop struct{}

func (Noop) Operation(string, string) {}

func (Noop) CipherDuration(string, time.Duration) {}

func (Noop) Purged(int) {}
