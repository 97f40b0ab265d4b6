package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for schedules, transitions and generation.
type Metrics struct {
	// State transitions committed, by target state
	Transitions *prometheus.CounterVec

	// Schedule writes by operation: "create", "update", "delete"
	ScheduleWrites *prometheus.CounterVec

	// Schedule writes refused by the conflict gate
	ConflictsRejected prometheus.Counter

	// Transitions that lost a concurrent write
	TransitionRaces prometheus.Counter

	// Generator runs by outcome: "completed", "partial", "skipped", "failed"
	GenerationRuns *prometheus.CounterVec

	// PENDING rows created by the generator
	RecordsGenerated prometheus.Counter

	GenerationDuration prometheus.Histogram
}

// New creates a new Metrics instance with all transfer metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medtransit_transfer_transitions_total",
			Help: "Committed transfer state transitions by target state",
		}, []string{"state"}),

		ScheduleWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medtransit_schedule_writes_total",
			Help: "Schedule create, update and delete operations",
		}, []string{"op"}),

		ConflictsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medtransit_schedule_conflicts_total",
			Help: "Schedule writes rejected because of an agenda or patient clash",
		}),

		TransitionRaces: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medtransit_transfer_transition_races_total",
			Help: "Transitions rejected because a concurrent writer committed first",
		}),

		GenerationRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medtransit_generation_runs_total",
			Help: "Daily status generation runs by outcome",
		}, []string{"outcome"}),

		RecordsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medtransit_generation_records_created_total",
			Help: "PENDING status records created by the generator",
		}),

		GenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "medtransit_generation_duration_seconds",
			Help:    "Duration of one daily status generation run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) IncrementTransition(state string) {
	if m != nil {
		m.Transitions.WithLabelValues(state).Inc()
	}
}

func (m *Metrics) IncrementScheduleWrite(op string) {
	if m != nil {
		m.ScheduleWrites.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) IncrementConflict() {
	if m != nil {
		m.ConflictsRejected.Inc()
	}
}

func (m *Metrics) IncrementTransitionRace() {
	if m != nil {
		m.TransitionRaces.Inc()
	}
}

// ObserveGeneration records one run's outcome, created rows and duration.
func (m *Metrics) ObserveGeneration(outcome string, created int, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationRuns.WithLabelValues(outcome).Inc()
	m.RecordsGenerated.Add(float64(created))
	m.GenerationDuration.Observe(d.Seconds())
}
