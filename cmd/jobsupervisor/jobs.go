package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/devtud/jobsupervisor/internal/jobsupervisor"
)

// builtinJobs is the catalog of job bodies this binary knows how to run,
// keyed by name. Job bodies are Go code, not config (spec.md §3: "body" is
// an opaque unit of work) — a jobsupervisor.yaml only supplies the
// scheduling metadata (cron, enabled) for jobs named here, the same split
// the original library's examples/simple_tasks.py demonstrates by
// registering plain async functions directly in user code. Entries not
// present in the running config are simply never registered.
func builtinJobs(sup *jobsupervisor.Supervisor, log *slog.Logger) map[string]jobsupervisor.JobBody {
	return map[string]jobsupervisor.JobBody{
		"heartbeat":   heartbeatJob(log),
		"self-report": selfReportJob(sup, log),
	}
}

// heartbeatJob logs a liveness line a handful of times, sleeping between
// each, honoring cancellation at every suspension point — the shape of the
// original's first_task example (a loop of sleep+log), generalized to
// observe ctx so cooperative cancellation actually works.
func heartbeatJob(log *slog.Logger) jobsupervisor.JobBodyFunc {
	return func(ctx context.Context) error {
		for i := 0; i < 5; i++ {
			log.Info("heartbeat", "tick", i)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
}

// selfReportJob logs the supervisor's own registered-job count and the
// time of the state snapshot it read — a small demonstration that a job body can call back into the
// Supervisor it is registered on, the same way a user job in the system
// this was modeled on might introspect the manager it belongs to.
func selfReportJob(sup *jobsupervisor.Supervisor, log *slog.Logger) jobsupervisor.JobBodyFunc {
	return func(ctx context.Context) error {
		snap := sup.State()
		log.Info("self report", "registered_jobs", len(snap.Jobs), "created_at", snap.CreatedAt)
		return nil
	}
}
