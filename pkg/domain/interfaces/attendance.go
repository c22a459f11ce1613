package interfaces

import (
	"context"
	"time"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// AttendanceRepository persists attendance records. The open-session
// invariant (at most one CHECKED_IN record per worker) is enforced here, not
// in the caller: CreateCheckIn and CloseActive are atomic check-then-act
// operations in both backends, so concurrent scans of the same badge cannot
// open two sessions.
type AttendanceRepository interface {
	// CreateCheckIn inserts a new open record with an auto-generated ID.
	// Fails wrapping model.ErrAlreadyCheckedIn when the worker already has an
	// open record.
	CreateCheckIn(ctx context.Context, rec *model.AttendanceRecord) (*model.AttendanceRecord, error)

	// CloseActive finds the worker's open record and transitions it to
	// CHECKED_OUT at the given time. Fails wrapping model.ErrNoActiveSession
	// when there is none.
	CloseActive(ctx context.Context, workerID types.WorkerID, at time.Time) (*model.AttendanceRecord, error)

	// FindActive retrieves the worker's open record, wrapping
	// model.ErrNoActiveSession when there is none.
	FindActive(ctx context.Context, workerID types.WorkerID) (*model.AttendanceRecord, error)

	// Get retrieves a record by ID
	Get(ctx context.Context, id types.AttendanceID) (*model.AttendanceRecord, error)

	// ListByDateRange retrieves records whose business date falls in
	// [from, to], optionally filtered by the late flag, ordered by check-in
	// time descending.
	ListByDateRange(ctx context.Context, from, to time.Time, late *bool) ([]*model.AttendanceRecord, error)

	// ListByWorker retrieves a worker's records in a business date range
	ListByWorker(ctx context.Context, workerID types.WorkerID, from, to time.Time) ([]*model.AttendanceRecord, error)

	// CountLate counts a worker's late records in a business date range
	CountLate(ctx context.Context, workerID types.WorkerID, from, to time.Time) (int, error)

	// DetachWorker tombstones a deprovisioned worker's records: the worker
	// reference is zeroed, the name snapshot is preserved.
	DetachWorker(ctx context.Context, workerID types.WorkerID) error
}
