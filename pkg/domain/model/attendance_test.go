package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

func TestAttendanceRecordClose(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 8, 5, 0, 0, time.UTC)

	t.Run("close derives worked duration and terminal state", func(t *testing.T) {
		rec := &model.AttendanceRecord{
			WorkerID:  1,
			BadgeID:   "3513B5B1",
			CheckInAt: checkIn,
			Status:    types.AttendanceCheckedIn,
		}
		gt.Bool(t, rec.Open()).True()

		checkOut := checkIn.Add(8*time.Hour + 30*time.Minute)
		gt.NoError(t, rec.Close(checkOut)).Required()

		gt.Bool(t, rec.Open()).False()
		gt.Value(t, rec.Status).Equal(types.AttendanceCheckedOut)
		gt.Value(t, rec.WorkedFor).Equal(8*time.Hour + 30*time.Minute)
		gt.Value(t, rec.CheckOutAt).NotNil()
	})

	t.Run("closing a terminal record fails", func(t *testing.T) {
		rec := &model.AttendanceRecord{
			WorkerID:  1,
			BadgeID:   "3513B5B1",
			CheckInAt: checkIn,
			Status:    types.AttendanceCheckedIn,
		}
		gt.NoError(t, rec.Close(checkIn.Add(time.Hour))).Required()

		err := rec.Close(checkIn.Add(2 * time.Hour))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrNoActiveSession)).True()
	})
}

func TestBusinessDate(t *testing.T) {
	at := time.Date(2024, 3, 4, 23, 59, 59, 0, time.UTC)
	gt.Bool(t, model.BusinessDate(at).Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))).True()

	early := time.Date(2024, 3, 5, 0, 0, 1, 0, time.UTC)
	gt.Bool(t, model.BusinessDate(early).Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))).True()
}
