// Command jobsupervisor runs the cron-style job supervisor daemon: the
// engine in internal/jobsupervisor wrapped in a YAML+env config layer,
// structured logging, Prometheus metrics, OpenTelemetry tracing and an
// HTTP control plane.
package main

func main() {
	Execute()
}
