package model

import "errors"

// Business-rule errors shared by every repository backend and the use case
// layer. Repositories wrap these so callers can branch with errors.Is
// regardless of the configured backend.
var (
	// ErrAlreadyCheckedIn is returned when a check-in is attempted while the
	// worker already has an open attendance record.
	ErrAlreadyCheckedIn = errors.New("worker already has an active check-in")

	// ErrNoActiveSession is returned when a check-out is attempted without an
	// open attendance record.
	ErrNoActiveSession = errors.New("no active check-in found")

	// ErrOutsideWindow is returned when a check-in timestamp falls outside the
	// allowed entry window.
	ErrOutsideWindow = errors.New("outside allowed entry window")

	// ErrBadgeClaimed is returned when claiming a badge that is already owned
	// by a different worker.
	ErrBadgeClaimed = errors.New("badge is already claimed")

	// ErrBadgeNotOwned is returned when releasing a badge whose current owner
	// does not match the caller.
	ErrBadgeNotOwned = errors.New("badge is not owned by worker")

	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = errors.New("not found")
)
