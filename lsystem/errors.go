package lsystem

import "errors"

// Error types for the lsystem package.
var (
	// ErrInvalidGrammar is returned when a grammar violates its structural invariants.
	ErrInvalidGrammar = errors.New("invalid grammar")

	// ErrInvalidArgument is returned when an iteration count is negative.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLimitExceeded is returned when a requested expansion grows past a
	// caller-supplied ceiling.
	ErrLimitExceeded = errors.New("resource limit exceeded")
)
