package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/repository/memory"
	"github.com/taller-iot/marcaje/pkg/usecase"
)

// simulateClock pins the effective clock so window and lateness checks are
// deterministic.
func simulateClock(t *testing.T, repo interfaces.Repository, at time.Time) {
	t.Helper()

	cfg := model.DefaultShiftConfig()
	cfg.SimulationMode = true
	cfg.SimulatedNow = &at
	gt.NoError(t, repo.ShiftConfig().Put(context.Background(), cfg)).Required()
}

func registerWorkerWithBadge(t *testing.T, uc *usecase.UseCases, badgeID types.BadgeID) *model.Worker {
	t.Helper()
	ctx := context.Background()

	worker, err := uc.Worker.Create(ctx, &model.Worker{
		FirstName:      "Maria",
		LastName:       "Lopez",
		DocumentNumber: "11222333",
	})
	gt.NoError(t, err).Required()

	_, err = uc.Badge.Claim(ctx, badgeID, worker.ID)
	gt.NoError(t, err).Required()

	return worker
}

func TestResolve(t *testing.T) {
	inWindow := time.Date(2024, 3, 4, 8, 5, 0, 0, time.UTC)

	t.Run("unclaimed badge is ignored and recorded", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		ctx := context.Background()

		action, err := uc.Resolver.Resolve(ctx, "DEADBEEF", inWindow)
		gt.NoError(t, err).Required()
		gt.Value(t, action).Equal(usecase.ActionIgnored)

		// The badge now sits in the pool with a last-seen time
		badge, err := repo.Badge().Get(ctx, "DEADBEEF")
		gt.NoError(t, err).Required()
		gt.Bool(t, badge.Claimed()).False()
		gt.Value(t, badge.LastSeenAt).NotNil()

		// A security event was raised, and no attendance record exists
		events, err := repo.SecurityEvent().ListByTimeRange(ctx, inWindow.Add(-time.Hour), inWindow.Add(time.Hour), "")
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(1)
		gt.Value(t, events[0].Kind).Equal(model.SecurityEventUnknownBadge)
		gt.Value(t, events[0].BadgeID).Equal(types.BadgeID("DEADBEEF"))
	})

	t.Run("claimed badge checks its owner in, then out", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		ctx := context.Background()

		simulateClock(t, repo, inWindow)
		worker := registerWorkerWithBadge(t, uc, "3513B5B1")

		action, err := uc.Resolver.Resolve(ctx, "3513B5B1", inWindow)
		gt.NoError(t, err).Required()
		gt.Value(t, action).Equal(usecase.ActionCheckedIn)

		active, err := uc.Attendance.ActiveSession(ctx, worker.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, active).NotNil()
		gt.Value(t, active.BadgeID).Equal(types.BadgeID("3513B5B1"))

		action, err = uc.Resolver.Resolve(ctx, "3513B5B1", inWindow.Add(8*time.Hour))
		gt.NoError(t, err).Required()
		gt.Value(t, action).Equal(usecase.ActionCheckedOut)

		active, err = uc.Attendance.ActiveSession(ctx, worker.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, active).Nil()
	})

	t.Run("check-in outside the window is swallowed", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		ctx := context.Background()

		// 03:00 is far outside the default 07:00-17:00 window
		outside := time.Date(2024, 3, 4, 3, 0, 0, 0, time.UTC)
		simulateClock(t, repo, outside)
		worker := registerWorkerWithBadge(t, uc, "85DB6DB1")

		action, err := uc.Resolver.Resolve(ctx, "85DB6DB1", outside)
		gt.NoError(t, err).Required()
		gt.Value(t, action).Equal(usecase.ActionIgnored)

		active, err := uc.Attendance.ActiveSession(ctx, worker.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, active).Nil()
	})

	t.Run("replayed scans settle into alternating sessions", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		ctx := context.Background()

		simulateClock(t, repo, inWindow)
		worker := registerWorkerWithBadge(t, uc, "BA910FB1")

		first, err := uc.Resolver.Resolve(ctx, "BA910FB1", inWindow)
		gt.NoError(t, err).Required()
		gt.Value(t, first).Equal(usecase.ActionCheckedIn)

		second, err := uc.Resolver.Resolve(ctx, "BA910FB1", inWindow.Add(time.Minute))
		gt.NoError(t, err).Required()
		gt.Value(t, second).Equal(usecase.ActionCheckedOut)

		third, err := uc.Resolver.Resolve(ctx, "BA910FB1", inWindow.Add(2*time.Minute))
		gt.NoError(t, err).Required()
		gt.Value(t, third).Equal(usecase.ActionCheckedIn)

		records, err := uc.Attendance.WorkerHistory(ctx, worker.ID,
			model.BusinessDate(inWindow), model.BusinessDate(inWindow).Add(24*time.Hour))
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(2)
	})
}
