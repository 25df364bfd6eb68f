package jobsupervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devtud/jobsupervisor/internal/eventlog"
	"github.com/devtud/jobsupervisor/internal/testutil"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	testutil.Eventually(t, cond, "job state transition", 2*time.Second)
}

func TestDispatcher_FinishedWithoutCronClearsNextStart(t *testing.T) {
	reg := newRegistry()
	rec, _ := reg.insert(JobDefinition{Name: "task1", Body: noopBody(), Enabled: true})

	log := eventlog.New()
	var gotFinished string
	disp := newDispatcher(log, testLogger(), Callbacks{OnFinished: func(name string) { gotFinished = name }})

	handle := newJobHandle(context.Background(), "task1", JobBodyFunc(func(ctx context.Context) error { return nil }))
	disp.dispatch(rec, handle)
	disp.wait()

	rec.mu.Lock()
	status := rec.Status
	next := rec.NextStartTS
	rec.mu.Unlock()

	if status != StatusFinished {
		t.Fatalf("Status = %v, want %v", status, StatusFinished)
	}
	if next != nil {
		t.Fatalf("NextStartTS = %v, want nil for a cron-less job", *next)
	}
	if gotFinished != "task1" {
		t.Fatalf("OnFinished callback name = %q, want %q", gotFinished, "task1")
	}
}

func TestDispatcher_FinishedWithCronComputesNextStart(t *testing.T) {
	reg := newRegistry()
	cron := "* * * * *"
	rec, _ := reg.insert(JobDefinition{Name: "task1", Body: noopBody(), Cron: &cron, Enabled: true})

	log := eventlog.New()
	disp := newDispatcher(log, testLogger(), Callbacks{})

	handle := newJobHandle(context.Background(), "task1", JobBodyFunc(func(ctx context.Context) error { return nil }))
	disp.dispatch(rec, handle)
	disp.wait()

	rec.mu.Lock()
	status := rec.Status
	next := rec.NextStartTS
	rec.mu.Unlock()

	// Status stays "finished" per spec.md §4.4; the scheduler's own
	// "pending, finished -> running" step picks it up once next_start_ts
	// is due, not the dispatcher.
	if status != StatusFinished {
		t.Fatalf("Status = %v, want %v", status, StatusFinished)
	}
	if next == nil {
		t.Fatal("NextStartTS = nil, want non-nil after a clean finish with cron set")
	}
}

func TestDispatcher_FailedAppendsErrorEvent(t *testing.T) {
	reg := newRegistry()
	rec, _ := reg.insert(JobDefinition{Name: "task1", Body: noopBody(), Enabled: true})

	log := eventlog.New()
	var gotErr error
	disp := newDispatcher(log, testLogger(), Callbacks{OnFailed: func(name string, err error) { gotErr = err }})

	wantErr := errors.New("boom")
	handle := newJobHandle(context.Background(), "task1", JobBodyFunc(func(ctx context.Context) error { return wantErr }))
	disp.dispatch(rec, handle)
	disp.wait()

	rec.mu.Lock()
	status := rec.Status
	rec.mu.Unlock()
	if status != StatusFailed {
		t.Fatalf("Status = %v, want %v", status, StatusFailed)
	}

	events, _ := log.since(0)
	if len(events) != 1 || events[0].EventType != eventlog.EventJobFailed {
		t.Fatalf("events = %+v, want exactly one job_failed event", events)
	}
	if events[0].Error == nil || *events[0].Error != "boom" {
		t.Fatalf("event.Error = %v, want %q", events[0].Error, "boom")
	}
	if !errors.Is(gotErr, wantErr) {
		t.Fatalf("OnFailed callback error = %v, want %v", gotErr, wantErr)
	}
}

func TestDispatcher_CancelledAppendsCancelledEvent(t *testing.T) {
	reg := newRegistry()
	rec, _ := reg.insert(JobDefinition{Name: "task1", Body: noopBody(), Enabled: true})

	log := eventlog.New()
	var gotCancelled string
	disp := newDispatcher(log, testLogger(), Callbacks{OnCancelled: func(name string) { gotCancelled = name }})

	started := make(chan struct{})
	handle := newJobHandle(context.Background(), "task1", JobBodyFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	<-started
	handle.RequestCancel()
	disp.dispatch(rec, handle)
	disp.wait()

	rec.mu.Lock()
	status := rec.Status
	rec.mu.Unlock()
	if status != StatusCancelled {
		t.Fatalf("Status = %v, want %v", status, StatusCancelled)
	}
	if gotCancelled != "task1" {
		t.Fatalf("OnCancelled callback name = %q, want %q", gotCancelled, "task1")
	}
}

func TestDispatcher_WaitDrainsInFlightDispatches(t *testing.T) {
	reg := newRegistry()
	rec, _ := reg.insert(JobDefinition{Name: "task1", Body: noopBody(), Enabled: true})
	log := eventlog.New()
	disp := newDispatcher(log, testLogger(), Callbacks{})

	handle := newJobHandle(context.Background(), "task1", JobBodyFunc(func(ctx context.Context) error {
		time.Sleep(20 * time.Millisecond)
		return nil
	}))
	disp.dispatch(rec, handle)
	disp.wait()

	waitFor(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.Status == StatusFinished
	})
}
