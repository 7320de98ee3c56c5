package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API.
	Registry = prometheus.NewRegistry()

	// SolveRuns counts solve runs by terminal status.
	SolveRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_runs_total", Help: "Solve runs by status."},
		[]string{"status"},
	)
	// RuinCalls counts ruin invocations by strategy.
	RuinCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_ruin_calls_total", Help: "Ruin strategy invocations."},
		[]string{"strategy"},
	)
	// SolveDuration records run wall time in seconds.
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solver_run_duration_seconds", Help: "Solve run duration in seconds.", Buckets: prometheus.DefBuckets},
	)
	// SolveIterations records iterations per run.
	SolveIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solver_run_iterations", Help: "Iterations per solve run.", Buckets: []float64{100, 500, 1000, 2000, 5000, 10000, 50000}},
	)
	// UnassignedJobs records how many jobs ended up unassigned per run.
	UnassignedJobs = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solver_unassigned_jobs", Help: "Unassigned jobs per solve run.", Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64}},
	)
)

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(SolveRuns)
		Registry.MustRegister(RuinCalls)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(SolveIterations)
		Registry.MustRegister(UnassignedJobs)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
