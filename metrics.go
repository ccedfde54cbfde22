// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by a Circuit.
//
type Metrics struct {
	Ticks        prometheus.Counter
	StepDuration prometheus.Histogram
	Conflicts    prometheus.Counter
	WiringErrors *prometheus.CounterVec
}

// NewMetrics creates the circuit collectors and registers them with reg. If reg
// is nil, the collectors are created but not registered.
//
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logicsim",
			Name:      "ticks_total",
			Help:      "Number of simulation steps committed.",
		}),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "logicsim",
			Name:      "step_duration_seconds",
			Help:      "Time spent evaluating and committing one simulation step.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logicsim",
			Name:      "net_conflicts_total",
			Help:      "Number of committed nets holding at least one Error bit.",
		}),
		WiringErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logicsim",
			Name:      "wiring_errors_total",
			Help:      "Failed net wiring operations by error kind.",
		}, []string{"op", "kind"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Ticks, m.StepDuration, m.Conflicts, m.WiringErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) wiringError(op string, err error) {
	if m == nil || err == nil {
		return
	}
	m.WiringErrors.WithLabelValues(op, errKind(err)).Inc()
}
