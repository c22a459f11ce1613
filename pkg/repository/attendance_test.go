package repository_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/repository/memory"
)

func openSession(t *testing.T, repo interfaces.Repository, workerID types.WorkerID, checkIn time.Time) *model.AttendanceRecord {
	t.Helper()

	created, err := repo.Attendance().CreateCheckIn(context.Background(), &model.AttendanceRecord{
		WorkerID:   workerID,
		WorkerName: "Test Worker",
		BadgeID:    "3513B5B1",
		Date:       model.BusinessDate(checkIn),
		CheckInAt:  checkIn,
	})
	gt.NoError(t, err).Required()
	return created
}

func runAttendanceRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	baseTime := time.Date(2024, 3, 4, 8, 10, 0, 0, time.UTC)

	t.Run("CreateCheckIn assigns incrementing IDs", func(t *testing.T) {
		repo := newRepo(t)

		first := openSession(t, repo, 1, baseTime)
		second := openSession(t, repo, 2, baseTime.Add(time.Minute))

		gt.Value(t, first.ID).NotEqual(types.AttendanceID(0))
		gt.Value(t, second.ID).NotEqual(first.ID)
		gt.Value(t, first.Status).Equal(types.AttendanceCheckedIn)
		gt.Bool(t, first.CreatedAt.IsZero()).False()
	})

	t.Run("CreateCheckIn rejects second open session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		openSession(t, repo, 1, baseTime)

		_, err := repo.Attendance().CreateCheckIn(ctx, &model.AttendanceRecord{
			WorkerID:  1,
			BadgeID:   "3513B5B1",
			Date:      model.BusinessDate(baseTime),
			CheckInAt: baseTime.Add(time.Minute),
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrAlreadyCheckedIn)).True()
	})

	t.Run("CloseActive transitions the open record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created := openSession(t, repo, 1, baseTime)

		checkOut := baseTime.Add(8 * time.Hour)
		closed, err := repo.Attendance().CloseActive(ctx, 1, checkOut)
		gt.NoError(t, err).Required()

		gt.Value(t, closed.ID).Equal(created.ID)
		gt.Value(t, closed.Status).Equal(types.AttendanceCheckedOut)
		gt.Value(t, closed.CheckOutAt).NotNil()
		gt.Bool(t, closed.CheckOutAt.Equal(checkOut)).True()
		gt.Value(t, closed.WorkedFor).Equal(8 * time.Hour)
	})

	t.Run("CloseActive fails with no open session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Attendance().CloseActive(ctx, 99, baseTime)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrNoActiveSession)).True()
	})

	t.Run("Close then check in again opens a fresh record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := openSession(t, repo, 1, baseTime)
		_, err := repo.Attendance().CloseActive(ctx, 1, baseTime.Add(4*time.Hour))
		gt.NoError(t, err).Required()

		second := openSession(t, repo, 1, baseTime.Add(5*time.Hour))
		gt.Value(t, second.ID).NotEqual(first.ID)

		active, err := repo.Attendance().FindActive(ctx, 1)
		gt.NoError(t, err).Required()
		gt.Value(t, active.ID).Equal(second.ID)
	})

	t.Run("FindActive returns error when nothing open", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Attendance().FindActive(ctx, 1)
		gt.Value(t, err).NotNil()
	})

	t.Run("ListByDateRange filters by late flag", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		onTime := openSession(t, repo, 1, baseTime)
		_ = onTime

		late, err := repo.Attendance().CreateCheckIn(ctx, &model.AttendanceRecord{
			WorkerID:  2,
			BadgeID:   "85DB6DB1",
			Date:      model.BusinessDate(baseTime),
			CheckInAt: baseTime.Add(30 * time.Minute),
			Late:      true,
			LateBy:    25 * time.Minute,
		})
		gt.NoError(t, err).Required()

		from := model.BusinessDate(baseTime)
		to := from.Add(24 * time.Hour)

		all, err := repo.Attendance().ListByDateRange(ctx, from, to, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)

		lateOnly := true
		lateRecords, err := repo.Attendance().ListByDateRange(ctx, from, to, &lateOnly)
		gt.NoError(t, err).Required()
		gt.Array(t, lateRecords).Length(1)
		gt.Value(t, lateRecords[0].ID).Equal(late.ID)
	})

	t.Run("ListByWorker returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := openSession(t, repo, 1, baseTime)
		_, err := repo.Attendance().CloseActive(ctx, 1, baseTime.Add(8*time.Hour))
		gt.NoError(t, err).Required()

		second := openSession(t, repo, 1, baseTime.Add(24*time.Hour))

		from := model.BusinessDate(baseTime)
		to := from.Add(48 * time.Hour)

		records, err := repo.Attendance().ListByWorker(ctx, 1, from, to)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(2)
		gt.Value(t, records[0].ID).Equal(second.ID)
		gt.Value(t, records[1].ID).Equal(first.ID)
	})

	t.Run("CountLate counts only late records in range", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Attendance().CreateCheckIn(ctx, &model.AttendanceRecord{
			WorkerID:  1,
			BadgeID:   "3513B5B1",
			Date:      model.BusinessDate(baseTime),
			CheckInAt: baseTime,
			Late:      true,
		})
		gt.NoError(t, err).Required()
		_, err = repo.Attendance().CloseActive(ctx, 1, baseTime.Add(8*time.Hour))
		gt.NoError(t, err).Required()

		nextDay := baseTime.Add(24 * time.Hour)
		_, err = repo.Attendance().CreateCheckIn(ctx, &model.AttendanceRecord{
			WorkerID:  1,
			BadgeID:   "3513B5B1",
			Date:      model.BusinessDate(nextDay),
			CheckInAt: nextDay,
		})
		gt.NoError(t, err).Required()

		from := model.BusinessDate(baseTime)
		to := from.Add(48 * time.Hour)

		count, err := repo.Attendance().CountLate(ctx, 1, from, to)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(1)
	})

	t.Run("DetachWorker zeroes the reference, keeps the name", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created := openSession(t, repo, 1, baseTime)
		_, err := repo.Attendance().CloseActive(ctx, 1, baseTime.Add(8*time.Hour))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Attendance().DetachWorker(ctx, 1)).Required()

		detached, err := repo.Attendance().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, detached.WorkerID).Equal(types.WorkerID(0))
		gt.Value(t, detached.WorkerName).Equal("Test Worker")
	})
}

func TestAttendanceRepository_ConcurrentCheckIn(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	checkIn := time.Date(2024, 3, 4, 8, 5, 0, 0, time.UTC)
	const attempts = 50

	var opened, rejected atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := repo.Attendance().CreateCheckIn(ctx, &model.AttendanceRecord{
				WorkerID:   1,
				WorkerName: "Test Worker",
				BadgeID:    "3513B5B1",
				Date:       model.BusinessDate(checkIn),
				CheckInAt:  checkIn,
			})
			switch {
			case err == nil:
				opened.Add(1)
			case errors.Is(err, model.ErrAlreadyCheckedIn):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	gt.Value(t, opened.Load()).Equal(int64(1))
	gt.Value(t, rejected.Load()).Equal(int64(attempts - 1))

	active, err := repo.Attendance().FindActive(ctx, 1)
	gt.NoError(t, err).Required()
	gt.Value(t, active.Status).Equal(types.AttendanceCheckedIn)
}

func TestAttendanceRepository_Memory(t *testing.T) {
	runAttendanceRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestAttendanceRepository_Firestore(t *testing.T) {
	runAttendanceRepositoryTest(t, newFirestoreRepo)
}
