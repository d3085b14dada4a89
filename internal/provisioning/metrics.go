package provisioning

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	requests    *prometheus.CounterVec
	completions *prometheus.CounterVec
	duration    prometheus.Histogram
}

// newMetrics registers the request lifecycle metrics. A nil registerer
// disables metrics, which keeps tests free of global registry state.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}

	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nsforge_requests_total",
			Help: "Provisioning requests by submission outcome.",
		}, []string{"outcome"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nsforge_request_completions_total",
			Help: "Requests that reached a terminal phase, by phase.",
		}, []string{"phase"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nsforge_provisioning_duration_seconds",
			Help:    "Time from request acceptance to a terminal phase.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	reg.MustRegister(m.requests, m.completions, m.duration)
	return m
}

func (m *metrics) observeRequest(outcome string) {
	if m != nil {
		m.requests.WithLabelValues(outcome).Inc()
	}
}

func (m *metrics) observeCompletion(phase string, seconds float64) {
	if m != nil {
		m.completions.WithLabelValues(phase).Inc()
		m.duration.Observe(seconds)
	}
}
