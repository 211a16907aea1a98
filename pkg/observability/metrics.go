package observability

import (
	"context"
	"sync"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Status is a point-in-time view of one simulation run.
type Status struct {
	RunID     string `json:"run_id"`
	Seed      int64  `json:"seed"`
	Phase     string `json:"phase"`
	Generated int    `json:"generated"`
	Executed  int    `json:"executed"`
	Failed    int    `json:"failed"`
	LastError string `json:"last_error,omitempty"`
}

// Metrics records simulation events as Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	phases    *prometheus.CounterVec
	generated *prometheus.CounterVec
	executed  *prometheus.CounterVec
	phase     prometheus.Gauge

	mu     sync.RWMutex
	status Status
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		phases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settsim_phase_transitions_total",
				Help: "Total number of lifecycle phases entered",
			},
			[]string{"phase"},
		),
		generated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settsim_actions_generated_total",
				Help: "Total number of actions generated during randomization",
			},
			[]string{"kind"},
		),
		executed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settsim_actions_executed_total",
				Help: "Total number of actions dispatched, by result",
			},
			[]string{"kind", "result"},
		),
		phase: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "settsim_phase",
			Help: "Current lifecycle phase (0 idle, 1 provisioned, 2 randomized, 3 running)",
		}),
		status: Status{Phase: domain.StateIdle.String()},
	}
	m.Registry.MustRegister(m.phases, m.generated, m.executed, m.phase)
	return m
}

// Hooks returns lifecycle hooks that update the collectors and the status.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *domain.PhaseEvent) {
			m.phases.WithLabelValues(e.To.String()).Inc()
			m.phase.Set(float64(e.To))
			m.update(e.EventBase, func(s *Status) {
				s.Phase = e.To.String()
			})
		},
		OnActionGenerated: func(ctx context.Context, e *domain.ActionEvent) {
			m.generated.WithLabelValues(string(e.Action.Kind)).Inc()
			m.update(e.EventBase, func(s *Status) {
				s.Generated++
			})
		},
		OnActionExecuted: func(ctx context.Context, e *domain.ActionEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.executed.WithLabelValues(string(e.Action.Kind), result).Inc()
			m.update(e.EventBase, func(s *Status) {
				s.Executed++
				if e.Err != nil {
					s.Failed++
					s.LastError = e.Err.Error()
				}
			})
		},
	}
}

// Status returns a copy of the current status.
func (m *Metrics) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Metrics) update(base domain.EventBase, fn func(*Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.RunID = base.RunID
	m.status.Seed = base.Seed
	fn(&m.status)
}
