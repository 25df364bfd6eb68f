package jobsupervisor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/devtud/jobsupervisor/internal/cronutil"
	"github.com/devtud/jobsupervisor/internal/eventlog"
	"github.com/devtud/jobsupervisor/internal/metrics"
	"github.com/devtud/jobsupervisor/internal/tracing"
)

// Callbacks are optional user hooks fired, fire-and-forget, as jobs reach a
// terminal state. Grounded on the teacher's on_success/on_failure handler
// pair in internal/process/manager_lifecycle.go, generalized to the three
// terminal classifications a JobHandle can report.
type Callbacks struct {
	OnFinished func(name string)
	OnFailed   func(name string, err error)
	OnCancelled func(name string)
}

// dispatcher watches a JobHandle to completion and folds its outcome back
// into the owning JobRecord: status transition, timestamps, the next
// scheduled run (for recurring jobs), an event-log entry, and the matching
// user callback. One dispatcher goroutine is spawned per job invocation.
type dispatcher struct {
	log       *eventlog.Log
	logger    *slog.Logger
	callbacks Callbacks

	wg sync.WaitGroup
}

func newDispatcher(log *eventlog.Log, logger *slog.Logger, callbacks Callbacks) *dispatcher {
	return &dispatcher{log: log, logger: logger, callbacks: callbacks}
}

// eventFor builds a Record carrying the definition-derived fields every
// EventRecord exposes on the wire (crontab, enabled), for the named job.
// Must be called with rec.mu held or against a snapshot, since Definition
// is read without copying.
func eventFor(def JobDefinition, et eventlog.EventType) eventlog.Record {
	return eventlog.Record{
		EventType: et,
		JobName:   def.Name,
		Cron:      def.Cron,
		Enabled:   def.Enabled,
	}
}

// dispatch spawns one goroutine per invocation that waits for handle to
// finish and then applies the outcome to rec; dispatch itself returns
// immediately. wait() lets Shutdown drain all of them before returning.
func (d *dispatcher) dispatch(rec *JobRecord, handle *JobHandle) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		<-handle.Done()
		d.apply(rec, handle)
	}()
}

func (d *dispatcher) apply(rec *JobRecord, handle *JobHandle) {
	oc, err := handle.result()
	now := cronutil.Now()

	_, span := tracing.StartDispatchSpan(context.Background(), rec.Definition.Name)
	defer span.End()

	rec.mu.Lock()
	rec.LastFinish = &now
	rec.RunningHandle = nil
	start := rec.LastStart

	var (
		status JobStatus
		event  eventlog.Record
	)

	switch oc {
	case outcomeCancelled:
		status = StatusCancelled
		event = eventFor(rec.Definition, eventlog.EventJobCancelled)
	case outcomeFailed:
		status = StatusFailed
		event = eventFor(rec.Definition, eventlog.EventJobFailed)
		if err != nil {
			e := err.Error()
			event.Error = &e
		}
	default:
		status = StatusFinished
		event = eventFor(rec.Definition, eventlog.EventJobFinished)
	}
	rec.Status = status
	rec.LastStatus = &status

	// Auto-rescheduling only ever happens out of a clean finish; cancelled
	// and failed jobs stay terminal until an explicit start. Status stays
	// "finished" either way — the scheduler's own
	// "pending, finished -> running" step (scheduler.go's advance) is what
	// picks the job back up once next_start_ts is due, not this dispatcher.
	if status == StatusFinished && rec.Definition.Cron != nil {
		if next, nerr := cronutil.NextRun(*rec.Definition.Cron, now); nerr == nil {
			ts := next.Unix()
			rec.NextStartTS = &ts
		} else {
			d.logger.Error("failed to compute next run after dispatch", "job", rec.Definition.Name, "error", nerr)
			rec.NextStartTS = nil
		}
	} else {
		rec.NextStartTS = nil
	}
	name := rec.Definition.Name
	nextTS := rec.NextStartTS
	finalStatus := rec.Status
	rec.mu.Unlock()

	d.log.Append(event)
	d.logger.Info("job dispatched", "job", name, "status", status)

	duration := 0.0
	if start != nil {
		duration = now.Sub(*start).Seconds()
	}
	metrics.RecordJobRun(name, string(status), duration)
	metrics.RecordJobStatus(name, string(finalStatus))
	if nextTS != nil {
		metrics.RecordJobNextRun(name, float64(*nextTS))
	} else {
		metrics.RecordJobNextRun(name, 0)
	}

	if err != nil {
		tracing.RecordError(span, err, string(status))
	} else {
		tracing.RecordSuccess(span)
	}

	switch oc {
	case outcomeCancelled:
		if d.callbacks.OnCancelled != nil {
			d.callbacks.OnCancelled(name)
		}
	case outcomeFailed:
		if d.callbacks.OnFailed != nil {
			d.callbacks.OnFailed(name, err)
		}
	default:
		if d.callbacks.OnFinished != nil {
			d.callbacks.OnFinished(name)
		}
	}
}

// wait blocks until every dispatched invocation currently in flight has
// applied its outcome. Used by Supervisor.Shutdown.
func (d *dispatcher) wait() {
	d.wg.Wait()
}
