package clfstat

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what an analysis run did, in a registry of its own, so that
// several runs in one process never collide.
type Metrics struct {
	Registry *prometheus.Registry

	LinesTotal    prometheus.Counter
	RecordsTotal  *prometheus.CounterVec
	RejectedTotal prometheus.Counter
	UniqueHosts   prometheus.Gauge
	RunDuration   prometheus.Gauge
}

// NewMetrics returns a Metrics with every series registered and at zero.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LinesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clfstat_lines_total",
			Help: "The total number of log lines read",
		}),
		RecordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clfstat_records_total",
			Help: "The total number of log lines parsed, by format",
		}, []string{"format"}),
		RejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clfstat_lines_rejected_total",
			Help: "The total number of log lines skipped because they could not be parsed",
		}),
		UniqueHosts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clfstat_unique_remote_hosts",
			Help: "The number of distinct remote hosts seen by the last run",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clfstat_run_duration_seconds",
			Help: "How long the last run took",
		}),
	}
	m.Registry.MustRegister(m.LinesTotal, m.RecordsTotal, m.RejectedTotal, m.UniqueHosts, m.RunDuration)
	return m
}

// IncRecords increments the parsed records counter for format f.
func (m *Metrics) IncRecords(f Format) {
	m.RecordsTotal.WithLabelValues(f.String()).Inc()
}

// ObserveRun records the outcome of a finished run.
func (m *Metrics) ObserveRun(res Result, elapsed time.Duration) {
	m.UniqueHosts.Set(float64(res.UniqueRemoteHostsCount))
	m.RunDuration.Set(elapsed.Seconds())
}

// WriteTextfile writes the metrics to path in the text exposition format
// read by the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
