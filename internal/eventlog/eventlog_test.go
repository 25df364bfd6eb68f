package eventlog

import (
	"context"
	"testing"
	"time"
)

func TestAppend_StampsTimestampAndIndex(t *testing.T) {
	l := New()

	idx := l.Append(Record{EventType: EventJobRegistered, JobName: "task1"})
	if idx != 0 {
		t.Errorf("first Append index = %d, want 0", idx)
	}

	idx = l.Append(Record{EventType: EventJobStarted, JobName: "task1"})
	if idx != 1 {
		t.Errorf("second Append index = %d, want 1", idx)
	}

	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestAppend_OrderPreservedPerJob(t *testing.T) {
	l := New()
	l.Append(Record{EventType: EventJobRegistered, JobName: "task1"})
	l.Append(Record{EventType: EventJobStarted, JobName: "task1"})
	l.Append(Record{EventType: EventJobFinished, JobName: "task1"})

	events, _ := l.since(0)
	want := []EventType{EventJobRegistered, EventJobStarted, EventJobFinished}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, e := range events {
		if e.EventType != want[i] {
			t.Errorf("event[%d].EventType = %s, want %s", i, e.EventType, want[i])
		}
	}
}

func TestSubscribe_RestartsCursorAtZero(t *testing.T) {
	l := New()
	l.Append(Record{EventType: EventJobRegistered, JobName: "task1"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := l.Subscribe(ctx)
	select {
	case e := <-ch:
		if e.EventType != EventJobRegistered {
			t.Errorf("first event type = %s, want %s", e.EventType, EventJobRegistered)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first event")
	}

	// A second, independent subscriber must also see the same first event —
	// subscriptions are restartable from index 0, never a shared cursor.
	ch2 := l.Subscribe(ctx)
	select {
	case e := <-ch2:
		if e.EventType != EventJobRegistered {
			t.Errorf("second subscriber first event type = %s, want %s", e.EventType, EventJobRegistered)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second subscriber's first event")
	}
}

func TestSubscribe_ClosesOnContextCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())

	ch := l.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed or empty after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestSince_OutOfRangeCursor(t *testing.T) {
	l := New()
	l.Append(Record{EventType: EventJobRegistered, JobName: "task1"})

	events, next := l.since(5)
	if events != nil {
		t.Errorf("since(5) events = %v, want nil", events)
	}
	if next != 1 {
		t.Errorf("since(5) next cursor = %d, want 1", next)
	}
}
