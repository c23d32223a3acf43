package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Solution results.
const (
	ResultConverted  = "converted"
	ResultNoSolution = "no_solution"
	ResultUnusable   = "unusable"
)

var (
	solutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gnss_solutions_total",
			Help: "Total number of GNSS solutions processed, by result.",
		},
		[]string{"result"},
	)

	sinkErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gnss_sink_errors_total",
			Help: "Total number of pose samples a sink failed to accept.",
		},
		[]string{"sink"},
	)

	lastSolutionTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gnss_last_solution_timestamp_seconds",
			Help: "Timestamp of the last converted solution, in Unix seconds.",
		},
	)
)

func init() {
	prometheus.MustRegister(solutionsTotal)
	prometheus.MustRegister(sinkErrorsTotal)
	prometheus.MustRegister(lastSolutionTimestamp)
}

// ObserveSolution counts one solution with the given result.
func ObserveSolution(result string) {
	solutionsTotal.WithLabelValues(result).Inc()
}

// ObserveConverted records the timestamp of a converted solution.
func ObserveConverted(unixSeconds float64) {
	lastSolutionTimestamp.Set(unixSeconds)
}

func ObserveSinkError(sink string) {
	sinkErrorsTotal.WithLabelValues(sink).Inc()
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
