package observability

import (
	"context"

	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by exploration hooks.
type Metrics struct {
	Frontiers      prometheus.Counter
	Configurations prometheus.Counter
	Merged         prometheus.Counter
	Pruned         prometheus.Counter
	Outcomes       *prometheus.CounterVec
	FrontierSize   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frontiers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdasim_frontiers_total",
			Help: "Total number of frontiers produced",
		}),
		Configurations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdasim_configurations_total",
			Help: "Total number of configurations produced",
		}),
		Merged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdasim_configurations_merged_total",
			Help: "Expansions dropped because an equal configuration was already in the frontier",
		}),
		Pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdasim_configurations_pruned_total",
			Help: "Dead ends removed during expansion",
		}),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdasim_outcomes_total",
				Help: "Finished explorations by outcome",
			},
			[]string{"status"},
		),
		FrontierSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pdasim_frontier_size",
			Help:    "Number of configurations per frontier",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Frontiers, m.Configurations, m.Merged, m.Pruned, m.Outcomes, m.FrontierSize)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFrontier: func(_ context.Context, e *domain.FrontierEvent) {
			m.Frontiers.Inc()
			m.Configurations.Add(float64(e.Size))
			m.Merged.Add(float64(e.Merged))
			m.Pruned.Add(float64(e.Pruned))
			m.FrontierSize.Observe(float64(e.Size))
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			m.Outcomes.WithLabelValues(string(domain.StatusFor(e.Outcome))).Inc()
		},
	}
}
