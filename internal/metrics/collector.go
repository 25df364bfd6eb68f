// Package metrics exposes the supervisor's Prometheus instrumentation.
// Metric names follow the jobsupervisor_* family, mirroring the
// phpeek_pm_scheduled_task_* naming convention this was adapted from.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobsupervisor_job_runs_total",
			Help: "Total number of job runs by terminal status",
		},
		[]string{"name", "status"}, // status: finished, failed, cancelled
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobsupervisor_job_duration_seconds",
			Help:    "Job execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 300.0, 600.0},
		},
		[]string{"name"},
	)

	JobLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobsupervisor_job_last_run_seconds",
			Help: "Unix timestamp of a job's last start",
		},
		[]string{"name"},
	)

	JobNextRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobsupervisor_job_next_run_seconds",
			Help: "Unix timestamp of a job's next scheduled start, if any",
		},
		[]string{"name"},
	)

	JobStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobsupervisor_job_status",
			Help: "1 for the job's current status, 0 otherwise, per status label",
		},
		[]string{"name", "status"},
	)

	RegisteredJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobsupervisor_registered_jobs",
			Help: "Total number of registered jobs",
		},
	)

	EventLogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobsupervisor_event_log_size",
			Help: "Current number of entries retained in the event log",
		},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobsupervisor_tick_duration_seconds",
			Help:    "Time taken to scan the registry during one scheduler tick",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	ShutdownDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobsupervisor_shutdown_duration_seconds",
			Help:    "Duration of graceful shutdown in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobsupervisor_build_info",
			Help: "jobsupervisor build information",
		},
		[]string{"version", "go_version"},
	)
)

// allStatuses lists every JobStatus label value RecordJobStatus clears
// before setting the current one, so stale status=1 gauges from a prior
// terminal state don't linger.
var allStatuses = []string{"registered", "pending", "running", "finished", "failed", "cancelled"}

// RecordJobRun records a terminal job run by status and its duration.
func RecordJobRun(name, status string, duration float64) {
	JobRuns.WithLabelValues(name, status).Inc()
	JobDuration.WithLabelValues(name).Observe(duration)
}

// RecordJobStart records the timestamp a job most recently started.
func RecordJobStart(name string, timestamp float64) {
	JobLastRun.WithLabelValues(name).Set(timestamp)
}

// RecordJobNextRun records the timestamp of a job's next scheduled start.
// Pass 0 to indicate there is none.
func RecordJobNextRun(name string, timestamp float64) {
	JobNextRun.WithLabelValues(name).Set(timestamp)
}

// RecordJobStatus sets the current-status gauge for name, clearing every
// other status label so only one stays at 1.
func RecordJobStatus(name, status string) {
	for _, s := range allStatuses {
		v := 0.0
		if s == status {
			v = 1.0
		}
		JobStatus.WithLabelValues(name, s).Set(v)
	}
}

// SetRegisteredJobs sets the total registered-jobs gauge.
func SetRegisteredJobs(count int) {
	RegisteredJobs.Set(float64(count))
}

// SetEventLogSize sets the event-log-size gauge.
func SetEventLogSize(size int) {
	EventLogSize.Set(float64(size))
}

// RecordTickDuration records how long one scheduler tick took to scan the
// registry.
func RecordTickDuration(duration float64) {
	TickDuration.Observe(duration)
}

// RecordShutdownDuration records the duration of graceful shutdown.
func RecordShutdownDuration(duration float64) {
	ShutdownDuration.Observe(duration)
}

// SetBuildInfo sets build information.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}
