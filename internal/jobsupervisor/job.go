// Package jobsupervisor implements the core cron-style job supervisor
// engine: the job registry, the job state machine, the scheduler tick
// loop, the lifecycle dispatcher, and the Supervisor composition root that
// exposes them to an HTTP control plane.
package jobsupervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/devtud/jobsupervisor/internal/tracing"
)

// JobBody is the capability-object abstraction replacing a raw callable
// reference: an opaque, asynchronous unit of work. Implementations must
// observe ctx and return promptly once it is done — cooperative
// cancellation has no other enforcement mechanism.
type JobBody interface {
	Run(ctx context.Context) error
}

// JobBodyFunc adapts a plain function to JobBody.
type JobBodyFunc func(ctx context.Context) error

// Run implements JobBody.
func (f JobBodyFunc) Run(ctx context.Context) error { return f(ctx) }

// JobDefinition is immutable after registration.
type JobDefinition struct {
	Name    string
	Body    JobBody
	Cron    *string // nil means "runs only when explicitly started"
	Enabled bool
}

// JobStatus is the tagged state a JobRecord can be in.
type JobStatus string

const (
	StatusRegistered JobStatus = "registered"
	StatusPending    JobStatus = "pending"
	StatusRunning    JobStatus = "running"
	StatusFinished   JobStatus = "finished"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// JobHandle tracks one in-flight invocation of a JobBody: the means to
// cooperatively cancel it and to learn, once it is done, whether the
// cancellation signal was delivered before completion.
//
// Classification contract: a completed invocation is "cancelled" only when
// RequestCancel() was called AND the body returned an error tracing back
// to context.Canceled — i.e. the signal was both delivered and honored. A
// cancel request racing in just before a body fails with its own unrelated
// error still classifies as "failed", not "cancelled". A body that ignores
// cancellation and completes cleanly is classified "finished", matching
// the spec's "leaves it running until it naturally terminates" boundary
// behavior.
type JobHandle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu              sync.Mutex
	finished        bool
	cancelRequested bool
	err             error
}

// newJobHandle starts body.Run in its own goroutine under a cancellable
// context derived from parent, recovering any panic into an error so a
// misbehaving job body can never take down the supervisor. The invocation
// is wrapped in its own span so a trace backend can show exactly how long
// a job body ran and whether it errored, independent of the dispatcher's
// own span covering the classification step that follows.
func newJobHandle(parent context.Context, jobName string, body JobBody) *JobHandle {
	ctx, cancel := context.WithCancel(parent)
	h := &JobHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		spanCtx, span := tracing.StartJobSpan(ctx, jobName)
		err := runBodyRecovered(spanCtx, body)
		if err != nil {
			tracing.RecordError(span, err, "job body returned an error")
		} else {
			tracing.RecordSuccess(span)
		}
		span.End()

		h.mu.Lock()
		h.finished = true
		h.err = err
		h.mu.Unlock()

		close(h.done)
	}()

	return h
}

func runBodyRecovered(ctx context.Context, body JobBody) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{recovered: r}
		}
	}()
	return body.Run(ctx)
}

// RequestCancel delivers a cancellation signal to the running task.
// Returns false if the task had already finished before the signal could
// land — the caller never blocks waiting to find out which.
func (h *JobHandle) RequestCancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished {
		return false
	}
	h.cancelRequested = true
	h.cancel()
	return true
}

// Done returns a channel closed once the task has terminated.
func (h *JobHandle) Done() <-chan struct{} {
	return h.done
}

// outcome describes how a terminated task concluded, for the dispatcher.
type outcome int

const (
	outcomeFinished outcome = iota
	outcomeFailed
	outcomeCancelled
)

// result reads the terminal state of a finished handle. Must only be
// called after Done() has fired.
//
// A cancel request alone doesn't make the outcome "cancelled" — the body
// must have actually honored it. A body that was independently about to
// fail with its own error at the moment RequestCancel raced in is still a
// failure, not a cancellation, so the error itself must trace back to the
// cancellation (context.Canceled, possibly wrapped) before it counts.
func (h *JobHandle) result() (outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancelRequested && h.err != nil && errors.Is(h.err, context.Canceled) {
		return outcomeCancelled, h.err
	}
	if h.err != nil {
		return outcomeFailed, h.err
	}
	return outcomeFinished, nil
}

// panicError wraps a recovered panic value so it satisfies error.
type panicError struct{ recovered any }

func (p panicError) Error() string {
	return "job body panicked: " + errorString(p.recovered)
}

func errorString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic value"
}

// JobRecord is the Registry's mutable, owned view of one registered job.
type JobRecord struct {
	mu sync.Mutex

	Definition JobDefinition

	Status       JobStatus
	LastStatus   *JobStatus
	CreatedAt    time.Time
	LastStart    *time.Time
	LastFinish   *time.Time
	NextStartTS  *int64 // absolute UTC epoch seconds, or nil
	RunningHandle *JobHandle
}

// snapshot returns a value copy of the record's observable fields, safe to
// hand to callers outside the registry lock.
func (r *JobRecord) snapshot() JobRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r
	cp.mu = sync.Mutex{}
	return cp
}
