package jobsupervisor

import (
	"fmt"
	"sync"

	"github.com/devtud/jobsupervisor/internal/cronutil"
	"github.com/devtud/jobsupervisor/internal/metrics"
)

// registry is the name -> JobRecord map backing the Supervisor. Grounded on
// the teacher's internal/process.Manager named-map shape, but — unlike a
// bare Go map, whose iteration order is intentionally randomized — it keeps
// an explicit insertion-order name slice because the HTTP job listing
// contract depends on deterministic order.
type registry struct {
	mu      sync.RWMutex
	byName  map[string]*JobRecord
	order   []string
}

func newRegistry() *registry {
	return &registry{byName: make(map[string]*JobRecord)}
}

// insert creates a new JobRecord for def, failing if the name is taken.
func (r *registry) insert(def JobDefinition) (*JobRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[def.Name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrJobAlreadyExists, def.Name)
	}

	rec := &JobRecord{
		Definition: def,
		Status:     StatusRegistered,
		CreatedAt:  cronutil.Now(),
	}
	r.byName[def.Name] = rec
	r.order = append(r.order, def.Name)
	metrics.SetRegisteredJobs(len(r.order))
	metrics.RecordJobStatus(def.Name, string(StatusRegistered))
	return rec, nil
}

// get returns the live record for name (not a copy — callers must respect
// its embedded mutex when reading or mutating fields directly).
func (r *registry) get(name string) (*JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.byName[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}
	return rec, nil
}

// list returns the live records in insertion order.
func (r *registry) list() []*JobRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*JobRecord, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// clear drops every record. Used only by Supervisor after shutdown.
func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName = make(map[string]*JobRecord)
	r.order = nil
	metrics.SetRegisteredJobs(0)
}
