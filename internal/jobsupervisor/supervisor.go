package jobsupervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/devtud/jobsupervisor/internal/cronutil"
	"github.com/devtud/jobsupervisor/internal/eventlog"
)

// DefaultTickInterval is the reference scheduling granularity: the
// upper bound on scheduling jitter the tick loop contract accepts.
const DefaultTickInterval = 1500 * time.Millisecond

// Option configures a Supervisor at construction time.
type Option func(*Supervisor)

// WithTickInterval overrides the default tick interval.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) { s.tickInterval = d }
}

// WithLogger overrides the default logger (slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) { s.logger = logger }
}

// WithCallbacks installs the lifecycle callback set.
func WithCallbacks(cb Callbacks) Option {
	return func(s *Supervisor) { s.callbacks = cb }
}

// Supervisor is the composition root: it owns the registry, the event log,
// the lifecycle dispatcher and the scheduler tick loop, and exposes the
// operations an HTTP control plane (or any other caller) drives it with.
// One Supervisor corresponds to one process-like context; multiple
// instances are permitted but fully isolated from one another.
type Supervisor struct {
	reg  *registry
	log  *eventlog.Log
	disp *dispatcher
	sch  *scheduler

	logger       *slog.Logger
	tickInterval time.Duration
	callbacks    Callbacks

	mu        sync.Mutex
	running   bool
	runCtx    context.Context
	cancelRun context.CancelFunc
	stopped   chan struct{}

	onStartup  func()
	onShutdown func()
}

// New constructs a Supervisor. It does nothing else; call Run to start the
// tick loop.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		logger:       slog.Default(),
		tickInterval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.reg = newRegistry()
	s.log = eventlog.New()
	s.disp = newDispatcher(s.log, s.logger, s.callbacks)
	s.sch = newScheduler(s.reg, s.disp, s.log, s.logger, s.tickInterval)
	return s
}

// OnStartup registers a callback invoked once, synchronously, at the start
// of Run(). A nil callback is a no-op.
func (s *Supervisor) OnStartup(fn func()) { s.onStartup = fn }

// OnShutdown registers a callback invoked once, synchronously, during
// Shutdown(). A nil callback is a no-op.
func (s *Supervisor) OnShutdown(fn func()) { s.onShutdown = fn }

// Register adds a new job under name, wrapping body so it can be scheduled
// and tracked. Fails with ErrJobAlreadyExists if name is taken, or with
// ErrInvalidCronExpr if cron is non-nil and unparsable.
func (s *Supervisor) Register(name string, body JobBody, cron *string) (JobInfo, error) {
	if cron != nil {
		if err := cronutil.Validate(*cron); err != nil {
			return JobInfo{}, fmt.Errorf("%w: %v", ErrInvalidCronExpr, err)
		}
	}

	def := JobDefinition{Name: name, Body: body, Cron: cron, Enabled: true}
	rec, err := s.reg.insert(def)
	if err != nil {
		return JobInfo{}, err
	}

	s.log.Append(eventFor(def, eventlog.EventJobRegistered))
	s.logger.Info("job registered", "job", name, "cron", cron)

	return toJobInfo(rec.snapshot(), cronutil.Now()), nil
}

// Start triggers name to run immediately, regardless of its schedule.
// Fails with ErrJobNotFound or ErrJobAlreadyRunning.
func (s *Supervisor) Start(name string) error {
	rec, err := s.reg.get(name)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	body := rec.Definition.Body
	rec.mu.Unlock()

	runCtx := s.runContext()
	return s.sch.beginRun(runCtx, rec, body)
}

// Cancel requests cooperative cancellation of name's in-flight run. Returns
// whether the signal was actually delivered — false if the task had
// already finished concurrently. Fails with ErrJobNotFound or
// ErrJobNotRunning.
func (s *Supervisor) Cancel(name string) (bool, error) {
	rec, err := s.reg.get(name)
	if err != nil {
		return false, err
	}

	rec.mu.Lock()
	handle := rec.RunningHandle
	rec.mu.Unlock()

	if handle == nil {
		return false, ErrJobNotRunning
	}
	return handle.RequestCancel(), nil
}

// Get returns the current JobInfo for name. Fails with ErrJobNotFound.
func (s *Supervisor) Get(name string) (JobInfo, error) {
	rec, err := s.reg.get(name)
	if err != nil {
		return JobInfo{}, err
	}
	return toJobInfo(rec.snapshot(), cronutil.Now()), nil
}

// List returns JobInfo for every registered job, in registration order.
func (s *Supervisor) List() []JobInfo {
	recs := s.reg.list()
	now := cronutil.Now()
	out := make([]JobInfo, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toJobInfo(rec.snapshot(), now))
	}
	return out
}

// State returns a best-effort consistent snapshot suitable for
// introspection or handing to a future Run's initial state.
func (s *Supervisor) State() StateSnapshot {
	return StateSnapshot{CreatedAt: cronutil.Now(), Jobs: s.List()}
}

// StreamEvents delegates to the event log; see eventlog.Log.Subscribe.
func (s *Supervisor) StreamEvents(ctx context.Context) <-chan eventlog.Record {
	return s.log.Subscribe(ctx)
}

// Run enters the tick loop and blocks until Shutdown is called or ctx is
// done. Idempotent: a second concurrent call logs a warning and returns
// immediately without starting a second loop. If initial is non-nil, the
// registry is hydrated from it first.
func (s *Supervisor) Run(ctx context.Context, initial *InitialState) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Run called while already running; ignoring")
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.runCtx = runCtx
	s.cancelRun = cancel
	s.stopped = make(chan struct{})
	s.mu.Unlock()

	if s.onStartup != nil {
		s.onStartup()
	}
	if initial != nil {
		s.hydrate(*initial)
	}

	s.sch.run(runCtx)

	s.mu.Lock()
	s.running = false
	close(s.stopped)
	s.mu.Unlock()
}

// runContext returns the context the tick loop is currently using for
// spawning job bodies, or context.Background() if Run has not been called
// yet — an explicit Start() before Run() still works, just without the
// loop's cancellation reaching it on Shutdown until Run starts.
func (s *Supervisor) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runCtx == nil {
		return context.Background()
	}
	return s.runCtx
}

// hydrate overlays compatible observable fields from initial onto matching
// existing records. Unknown names are ignored with a warning; hydration
// never creates records.
func (s *Supervisor) hydrate(initial InitialState) {
	for _, info := range initial.JobsInfo {
		rec, err := s.reg.get(info.Name)
		if err != nil {
			s.logger.Warn("ignoring unknown job in initial state", "job", info.Name)
			continue
		}
		rec.mu.Lock()
		rec.Status = info.LastStatus
		rec.CreatedAt = info.CreatedAt
		rec.LastFinish = info.StoppedAt
		rec.mu.Unlock()
	}
}

// Shutdown stops the tick loop, cancels every in-flight job, and drains
// outstanding lifecycle callbacks before returning. Idempotent.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancelRun
	stopped := s.stopped
	s.mu.Unlock()

	for _, rec := range s.reg.list() {
		rec.mu.Lock()
		handle := rec.RunningHandle
		rec.mu.Unlock()
		if handle != nil {
			handle.RequestCancel()
		}
	}

	cancel()
	<-stopped

	s.disp.wait()

	if s.onShutdown != nil {
		s.onShutdown()
	}
}
