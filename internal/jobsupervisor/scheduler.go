package jobsupervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/devtud/jobsupervisor/internal/cronutil"
	"github.com/devtud/jobsupervisor/internal/eventlog"
	"github.com/devtud/jobsupervisor/internal/metrics"
	"github.com/devtud/jobsupervisor/internal/tracing"
)

// scheduler is the supervisor's own tick loop: unlike the teacher's
// Scheduler, which hands its schedule to a *cron.Cron and lets that run its
// own goroutine, this loop owns time itself. Each tick re-reads every job's
// next_start_ts against the clock and drives registered->pending->running
// transitions directly, so the cron expression is consulted only to compute
// "when next", never to decide "who runs now".
type scheduler struct {
	reg    *registry
	disp   *dispatcher
	log    *eventlog.Log
	logger *slog.Logger

	tickInterval time.Duration
}

func newScheduler(reg *registry, disp *dispatcher, log *eventlog.Log, logger *slog.Logger, tickInterval time.Duration) *scheduler {
	return &scheduler{reg: reg, disp: disp, log: log, logger: logger, tickInterval: tickInterval}
}

// run blocks until ctx is done, ticking at s.tickInterval.
func (s *scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *scheduler) tick(ctx context.Context) {
	ctx, span := tracing.StartTickSpan(ctx)
	defer span.End()

	start := time.Now()
	for _, rec := range s.reg.list() {
		s.advance(ctx, rec)
	}
	metrics.RecordTickDuration(time.Since(start).Seconds())
	tracing.RecordSuccess(span)
}

// advance applies one step of the state machine to rec, if the clock says
// it's due. A job with Cron == nil never advances on its own; it only runs
// when explicitly started.
func (s *scheduler) advance(ctx context.Context, rec *JobRecord) {
	now := cronutil.Now()

	rec.mu.Lock()
	switch rec.Status {
	case StatusRegistered:
		// Always leaves "registered" on the first tick. next_start_ts is
		// only ever populated for cron-bearing jobs (invariant: it is
		// non-null only when cron is non-null) — a cron-less job reaches
		// "pending" with next_start_ts == nil and simply waits there for
		// an explicit start, matching "absent cron means explicitly
		// started only".
		if rec.Definition.Cron != nil {
			next, err := cronutil.NextRun(*rec.Definition.Cron, now)
			if err != nil {
				rec.mu.Unlock()
				s.logger.Error("failed to schedule job", "job", rec.Definition.Name, "error", err)
				return
			}
			ts := next.Unix()
			rec.NextStartTS = &ts
		}
		rec.Status = StatusPending
		name, nextTS := rec.Definition.Name, rec.NextStartTS
		rec.mu.Unlock()

		metrics.RecordJobStatus(name, string(StatusPending))
		if nextTS != nil {
			metrics.RecordJobNextRun(name, float64(*nextTS))
		}

	case StatusPending, StatusFinished:
		// Auto-rescheduling is deliberately not performed from failed or
		// cancelled states; those stay terminal until an explicit start.
		if !rec.Definition.Enabled || rec.NextStartTS == nil || *rec.NextStartTS > now.Unix() {
			rec.mu.Unlock()
			return
		}
		body := rec.Definition.Body
		rec.mu.Unlock()
		s.beginRun(ctx, rec, body)

	default:
		rec.mu.Unlock()
	}
}

// beginRun transitions rec into running and spawns the job body. Shared by
// the tick loop (scheduled due-time) and Supervisor.Start (explicit
// trigger). Returns ErrJobAlreadyRunning if a handle is already live.
func (s *scheduler) beginRun(ctx context.Context, rec *JobRecord, body JobBody) error {
	rec.mu.Lock()
	if rec.RunningHandle != nil {
		rec.mu.Unlock()
		return ErrJobAlreadyRunning
	}
	start := cronutil.Now()
	name := rec.Definition.Name
	handle := newJobHandle(ctx, name, body)
	rec.RunningHandle = handle
	rec.Status = StatusRunning
	rec.LastStart = &start
	rec.mu.Unlock()

	s.log.Append(eventFor(rec.Definition, eventlog.EventJobStarted))
	s.logger.Info("job started", "job", name)
	metrics.RecordJobStart(name, float64(start.Unix()))
	metrics.RecordJobStatus(name, string(StatusRunning))

	s.disp.dispatch(rec, handle)
	return nil
}
