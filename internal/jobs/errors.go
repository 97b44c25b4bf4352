package jobs

import "errors"

var (
	// ErrClaimConflict signals that a job was not in pending state when a
	// claim was attempted. Schedulers skip the job; it is never a failure.
	ErrClaimConflict = errors.New("job claim conflict")

	ErrJobNotFound = errors.New("job not found")

	// ErrJobTerminal is returned when mutating a job that already reached a
	// terminal state.
	ErrJobTerminal = errors.New("job is in a terminal state")
)
