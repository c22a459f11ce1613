package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// AttendanceUseCase owns the check-in/check-out state machine
type AttendanceUseCase struct {
	repo   interfaces.Repository
	config *ConfigUseCase
}

func NewAttendanceUseCase(repo interfaces.Repository, config *ConfigUseCase) *AttendanceUseCase {
	return &AttendanceUseCase{
		repo:   repo,
		config: config,
	}
}

// CheckIn opens a session for the worker at the given scan time. The scan
// must fall inside the entry window; lateness is evaluated against the shift
// start resolved for the business date, which for night shifts can anchor to
// the previous calendar day.
func (uc *AttendanceUseCase) CheckIn(ctx context.Context, worker *model.Worker, badgeID types.BadgeID, at time.Time) (*model.AttendanceRecord, error) {
	cfg := shiftConfig(ctx, uc.repo)

	if !cfg.InEntryWindow(at) {
		return nil, goerr.Wrap(model.ErrOutsideWindow, "check-in outside the entry window",
			goerr.V("worker", worker.ID),
			goerr.V("at", at),
			goerr.V("window_start", cfg.WorkStart.String()),
			goerr.V("window_end", cfg.WorkEnd.String()))
	}

	date := model.BusinessDate(at)
	late, lateBy := cfg.Lateness(at, date)

	record, err := uc.repo.Attendance().CreateCheckIn(ctx, &model.AttendanceRecord{
		WorkerID:   worker.ID,
		WorkerName: worker.FullName(),
		BadgeID:    badgeID,
		Date:       date,
		CheckInAt:  at,
		Late:       late,
		LateBy:     lateBy,
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// CheckOut closes the worker's open session at the given scan time
func (uc *AttendanceUseCase) CheckOut(ctx context.Context, workerID types.WorkerID, at time.Time) (*model.AttendanceRecord, error) {
	record, err := uc.repo.Attendance().CloseActive(ctx, workerID, at)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ActiveSession returns the worker's open record, or nil when none is open
func (uc *AttendanceUseCase) ActiveSession(ctx context.Context, workerID types.WorkerID) (*model.AttendanceRecord, error) {
	record, err := uc.repo.Attendance().FindActive(ctx, workerID)
	if err != nil {
		if errors.Is(err, model.ErrNoActiveSession) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to find active session", goerr.V("worker", workerID))
	}
	return record, nil
}

// History lists attendance records whose business date falls in [from, to],
// optionally filtered by the late flag.
func (uc *AttendanceUseCase) History(ctx context.Context, from, to time.Time, late *bool) ([]*model.AttendanceRecord, error) {
	records, err := uc.repo.Attendance().ListByDateRange(ctx, from, to, late)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list attendance records")
	}
	return records, nil
}

// WorkerHistory lists one worker's records in a business date range
func (uc *AttendanceUseCase) WorkerHistory(ctx context.Context, workerID types.WorkerID, from, to time.Time) ([]*model.AttendanceRecord, error) {
	records, err := uc.repo.Attendance().ListByWorker(ctx, workerID, from, to)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list worker attendance", goerr.V("worker", workerID))
	}
	return records, nil
}

// LateCount counts a worker's late arrivals in a business date range
func (uc *AttendanceUseCase) LateCount(ctx context.Context, workerID types.WorkerID, from, to time.Time) (int, error) {
	count, err := uc.repo.Attendance().CountLate(ctx, workerID, from, to)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count late records", goerr.V("worker", workerID))
	}
	return count, nil
}
