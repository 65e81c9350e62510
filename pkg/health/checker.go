package health

import (
	"context"
	"time"
)

// Result represents the outcome of a dependency reachability check
type Result struct {
	Connected bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker is the interface all dependency checkers implement. Checks must
// fail fast: implementations carry their own timeout and never hang.
type Checker interface {
	// Check performs the reachability check and returns the result
	Check(ctx context.Context) Result

	// Name returns the dependency name
	Name() string

	// Required reports whether a failed check makes the gateway unhealthy
	Required() bool
}

// DefaultTimeout is applied when a checker is configured without one
const DefaultTimeout = 5 * time.Second
