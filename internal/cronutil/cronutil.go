// Package cronutil provides the pure clock and cron-expression oracle the
// scheduler relies on: given a standard 5-field cron expression and a
// reference time, how long until the next firing.
package cronutil

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Now returns the current time in UTC. The scheduler and registry use this
// as their single source of "now" so tests can reason about a consistent
// clock.
func Now() time.Time {
	return time.Now().UTC()
}

// NextDelay parses expr and returns the non-negative delay from `from`
// until its next firing. It re-parses on every call rather than caching a
// cron.Schedule, since nothing here drives execution directly — the
// scheduler tick loop does that by polling NextRun against now.
func NextDelay(expr string, from time.Time) (time.Duration, error) {
	next, err := NextRun(expr, from)
	if err != nil {
		return 0, err
	}
	delay := next.Sub(from)
	if delay < 0 {
		delay = 0
	}
	return delay, nil
}

// NextRun parses expr and returns the absolute next firing time after from.
func NextRun(expr string, from time.Time) (time.Time, error) {
	schedule, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, expr, err)
	}
	return schedule.Next(from), nil
}

// Validate reports whether expr is a well-formed 5-field cron expression.
func Validate(expr string) error {
	_, err := parser.Parse(expr)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidExpression, expr, err)
	}
	return nil
}
