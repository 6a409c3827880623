package madness

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the work done by the crossing computations. A nil *Metrics
// records nothing.
type Metrics struct {
	evaluations *prometheus.CounterVec
	samples     *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "madness_distance_evaluations_total",
				Help: "Total number of distance oracle evaluations.",
			},
			[]string{"frame"},
		),
		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "madness_scan_samples_total",
				Help: "Total number of scan samples taken.",
			},
			[]string{"phase"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "madness_scan_outcomes_total",
				Help: "Scan phase results.",
			},
			[]string{"phase", "outcome"},
		),
	}
	for _, c := range []prometheus.Collector{m.evaluations, m.samples, m.outcomes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) evaluation(f Frame) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(f.String()).Inc()
}

func (m *Metrics) sampled(p Phase, n int) {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(p.String()).Add(float64(n))
}

func (m *Metrics) outcome(p Phase, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(p.String(), outcome).Inc()
}
