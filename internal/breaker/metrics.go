package breaker

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the Prometheus collectors shared by all breakers in a
// registry. Labels carry the dependency name.
type metrics struct {
	state    *prometheus.GaugeVec
	opens    *prometheus.CounterVec
	failures *prometheus.CounterVec
	rejects  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "nsforge",
				Subsystem: "breaker",
				Name:      "state",
				Help:      "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"dependency"},
		),
		opens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nsforge",
				Subsystem: "breaker",
				Name:      "opens_total",
				Help:      "Total number of times a circuit opened",
			},
			[]string{"dependency"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nsforge",
				Subsystem: "breaker",
				Name:      "failures_total",
				Help:      "Total number of calls counted as dependency failures",
			},
			[]string{"dependency"},
		),
		rejects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nsforge",
				Subsystem: "breaker",
				Name:      "rejects_total",
				Help:      "Total number of calls rejected without invoking the dependency",
			},
			[]string{"dependency"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.state, m.opens, m.failures, m.rejects)
	}
	return m
}
