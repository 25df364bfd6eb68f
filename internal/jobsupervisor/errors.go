package jobsupervisor

import "errors"

// Sentinel errors surfaced across the Supervisor's public API boundary.
// Handlers in the HTTP layer map these to status codes with errors.Is,
// the idiomatic upgrade of the teacher's string-matching error classifier.
var (
	ErrJobNotFound        = errors.New("job not found")
	ErrJobAlreadyExists   = errors.New("job already exists")
	ErrJobAlreadyRunning  = errors.New("job already running")
	ErrJobNotRunning      = errors.New("job not running")
	ErrInvalidCronExpr    = errors.New("invalid cron expression")
)
