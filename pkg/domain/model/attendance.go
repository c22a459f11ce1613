package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// AttendanceRecord is one check-in/check-out session for a worker. Records
// are append-only: a record transitions CHECKED_IN → CHECKED_OUT exactly once
// and is never reopened; a later scan starts a fresh record. WorkerName is a
// snapshot taken at check-in so the record stays readable after the worker is
// deprovisioned (WorkerID is zeroed, the name survives).
type AttendanceRecord struct {
	ID         types.AttendanceID
	WorkerID   types.WorkerID
	WorkerName string
	BadgeID    types.BadgeID
	Date       time.Time // business date at midnight, not necessarily CheckInAt's calendar date
	CheckInAt  time.Time
	CheckOutAt *time.Time
	WorkedFor  time.Duration
	Late       bool
	LateBy     time.Duration
	Status     types.AttendanceStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Open reports whether the record is still in CHECKED_IN state
func (r *AttendanceRecord) Open() bool {
	return r.Status == types.AttendanceCheckedIn
}

// Close transitions the record to its terminal CHECKED_OUT state and derives
// the worked duration. Closing a terminal record is an error.
func (r *AttendanceRecord) Close(at time.Time) error {
	if !r.Open() {
		return goerr.Wrap(ErrNoActiveSession, "record is already checked out",
			goerr.V("id", r.ID), goerr.V("worker", r.WorkerID))
	}
	r.CheckOutAt = &at
	r.WorkedFor = at.Sub(r.CheckInAt)
	r.Status = types.AttendanceCheckedOut
	return nil
}

// Validate checks if the AttendanceRecord is valid
func (r *AttendanceRecord) Validate() error {
	if err := r.BadgeID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid badge ID")
	}
	if !r.Status.IsValid() {
		return goerr.New("invalid attendance status", goerr.V("status", r.Status))
	}
	if r.CheckInAt.IsZero() {
		return goerr.New("check-in time is required")
	}
	return nil
}

// BusinessDate truncates a timestamp to midnight in its own location. The
// business date of a night-shift check-in is still the calendar date of the
// scan; the lateness arithmetic decides which day's shift start applies.
func BusinessDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
