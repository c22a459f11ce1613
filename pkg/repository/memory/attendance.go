package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

type attendanceRepository struct {
	mu      sync.RWMutex
	records map[types.AttendanceID]*model.AttendanceRecord
	nextID  types.AttendanceID
}

func newAttendanceRepository() *attendanceRepository {
	return &attendanceRepository{
		records: make(map[types.AttendanceID]*model.AttendanceRecord),
		nextID:  1,
	}
}

func copyAttendance(r *model.AttendanceRecord) *model.AttendanceRecord {
	copied := *r
	if r.CheckOutAt != nil {
		out := *r.CheckOutAt
		copied.CheckOutAt = &out
	}
	return &copied
}

func (r *attendanceRepository) CreateCheckIn(ctx context.Context, rec *model.AttendanceRecord) (*model.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.WorkerID == rec.WorkerID && existing.Open() {
			return nil, goerr.Wrap(model.ErrAlreadyCheckedIn, "worker has an open session",
				goerr.V("worker", rec.WorkerID), goerr.V("record", existing.ID))
		}
	}

	now := time.Now().UTC()
	created := copyAttendance(rec)
	created.ID = r.nextID
	created.Status = types.AttendanceCheckedIn
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.records[created.ID] = created
	return copyAttendance(created), nil
}

func (r *attendanceRepository) CloseActive(ctx context.Context, workerID types.WorkerID, at time.Time) (*model.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.WorkerID != workerID || !rec.Open() {
			continue
		}
		if err := rec.Close(at); err != nil {
			return nil, err
		}
		rec.UpdatedAt = time.Now().UTC()
		return copyAttendance(rec), nil
	}

	return nil, goerr.Wrap(model.ErrNoActiveSession, "no open session for worker",
		goerr.V("worker", workerID))
}

func (r *attendanceRepository) FindActive(ctx context.Context, workerID types.WorkerID) (*model.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.WorkerID == workerID && rec.Open() {
			return copyAttendance(rec), nil
		}
	}
	return nil, goerr.Wrap(model.ErrNoActiveSession, "no open session for worker", goerr.V("worker", workerID))
}

func (r *attendanceRepository) Get(ctx context.Context, id types.AttendanceID) (*model.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "attendance record not found", goerr.V("id", id))
	}
	return copyAttendance(rec), nil
}

func sortByCheckInDesc(records []*model.AttendanceRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].CheckInAt.After(records[j].CheckInAt)
	})
}

func inDateRange(rec *model.AttendanceRecord, from, to time.Time) bool {
	return !rec.Date.Before(from) && !rec.Date.After(to)
}

func (r *attendanceRepository) ListByDateRange(ctx context.Context, from, to time.Time, late *bool) ([]*model.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*model.AttendanceRecord
	for _, rec := range r.records {
		if !inDateRange(rec, from, to) {
			continue
		}
		if late != nil && rec.Late != *late {
			continue
		}
		records = append(records, copyAttendance(rec))
	}

	sortByCheckInDesc(records)
	return records, nil
}

func (r *attendanceRepository) ListByWorker(ctx context.Context, workerID types.WorkerID, from, to time.Time) ([]*model.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*model.AttendanceRecord
	for _, rec := range r.records {
		if rec.WorkerID != workerID || !inDateRange(rec, from, to) {
			continue
		}
		records = append(records, copyAttendance(rec))
	}

	sortByCheckInDesc(records)
	return records, nil
}

func (r *attendanceRepository) CountLate(ctx context.Context, workerID types.WorkerID, from, to time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rec := range r.records {
		if rec.WorkerID == workerID && rec.Late && inDateRange(rec, from, to) {
			count++
		}
	}
	return count, nil
}

func (r *attendanceRepository) DetachWorker(ctx context.Context, workerID types.WorkerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.WorkerID == workerID {
			rec.WorkerID = 0
			rec.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}
