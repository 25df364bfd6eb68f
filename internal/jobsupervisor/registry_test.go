package jobsupervisor

import (
	"context"
	"errors"
	"testing"
)

func noopBody() JobBody {
	return JobBodyFunc(func(ctx context.Context) error { return nil })
}

func TestRegistry_InsertAndGet(t *testing.T) {
	r := newRegistry()
	rec, err := r.insert(JobDefinition{Name: "task1", Body: noopBody(), Enabled: true})
	if err != nil {
		t.Fatalf("insert() error = %v", err)
	}
	if rec.Status != StatusRegistered {
		t.Fatalf("Status = %v, want %v", rec.Status, StatusRegistered)
	}

	got, err := r.get("task1")
	if err != nil || got != rec {
		t.Fatalf("get() = (%v, %v), want (%v, nil)", got, err, rec)
	}
}

func TestRegistry_DuplicateNameFails(t *testing.T) {
	r := newRegistry()
	if _, err := r.insert(JobDefinition{Name: "task1", Body: noopBody()}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := r.insert(JobDefinition{Name: "task1", Body: noopBody()})
	if !errors.Is(err, ErrJobAlreadyExists) {
		t.Fatalf("second insert error = %v, want ErrJobAlreadyExists", err)
	}

	// The existing record must be unaffected by the failed registration.
	rec, err := r.get("task1")
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if rec.Status != StatusRegistered {
		t.Fatalf("existing record mutated: status = %v", rec.Status)
	}
}

func TestRegistry_GetUnknownFails(t *testing.T) {
	r := newRegistry()
	_, err := r.get("ghost")
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("get() error = %v, want ErrJobNotFound", err)
	}
}

func TestRegistry_ListPreservesInsertionOrder(t *testing.T) {
	r := newRegistry()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		if _, err := r.insert(JobDefinition{Name: n, Body: noopBody()}); err != nil {
			t.Fatalf("insert(%q) error = %v", n, err)
		}
	}

	list := r.list()
	if len(list) != len(names) {
		t.Fatalf("list() len = %d, want %d", len(list), len(names))
	}
	for i, rec := range list {
		if rec.Definition.Name != names[i] {
			t.Errorf("list()[%d].Name = %q, want %q", i, rec.Definition.Name, names[i])
		}
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := newRegistry()
	r.insert(JobDefinition{Name: "task1", Body: noopBody()})
	r.clear()

	if len(r.list()) != 0 {
		t.Fatalf("list() after clear = %v, want empty", r.list())
	}
	if _, err := r.get("task1"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("get() after clear error = %v, want ErrJobNotFound", err)
	}
}
