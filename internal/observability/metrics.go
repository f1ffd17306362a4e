package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "pickleball_fantasy"

// Metrics exports business counters to Prometheus.
type Metrics struct {
	registry *prometheus.Registry

	matchesScored    prometheus.Counter
	teamsRecomputed  prometheus.Counter
	distributions    prometheus.Counter
	prizeWinners     prometheus.Histogram
	payoutAttempts   *prometheus.CounterVec
	paymentsCaptured *prometheus.CounterVec
}

// NewMetrics registers the service collectors on a fresh registry together
// with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		matchesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "matches_scored_total",
			Help:      "Completed matches turned into player points.",
		}),
		teamsRecomputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "teams_recomputed_total",
			Help:      "Fantasy team totals recomputed.",
		}),
		distributions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "prize_distributions_total",
			Help:      "Contests whose prize pool was distributed.",
		}),
		prizeWinners: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "prize_distribution_winners",
			Help:      "Number of winning teams per distribution.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		}),
		payoutAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "payout_attempts_total",
			Help:      "Payout handoffs by resulting disbursement status.",
		}, []string{"status"}),
		paymentsCaptured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "payments_captured_total",
			Help:      "Captured entry-fee payments, split by duplicate delivery.",
		}, []string{"duplicate"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.matchesScored,
		m.teamsRecomputed,
		m.distributions,
		m.prizeWinners,
		m.payoutAttempts,
		m.paymentsCaptured,
	)
	return m
}

// Registry exposes the underlying registry so the event router can add its own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) MatchScored() {
	m.matchesScored.Inc()
}

func (m *Metrics) TeamsRecomputed(count int) {
	if count > 0 {
		m.teamsRecomputed.Add(float64(count))
	}
}

func (m *Metrics) DistributionCompleted(winners int) {
	m.distributions.Inc()
	m.prizeWinners.Observe(float64(winners))
}

func (m *Metrics) PayoutAttempted(status string) {
	m.payoutAttempts.WithLabelValues(status).Inc()
}

func (m *Metrics) PaymentCaptured(duplicate bool) {
	m.paymentsCaptured.WithLabelValues(strconv.FormatBool(duplicate)).Inc()
}
