package generator

import "errors"

// Error categories. Orchestrator failures wrap exactly one of these (cancellation aside),
// so callers can branch with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrIO            = errors.New("io failure")
	ErrTemplate      = errors.New("template error")
	ErrLocked        = errors.New("another generation is running for this project")
)
