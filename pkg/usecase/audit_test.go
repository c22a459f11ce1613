package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/repository/memory"
	"github.com/taller-iot/marcaje/pkg/usecase"
)

func TestRecordGranted(t *testing.T) {
	at := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	t.Run("resolves the sensor ID to a worker", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		ctx := context.Background()

		sensorID := types.SensorID(4)
		worker, err := repo.Worker().Create(ctx, &model.Worker{
			FirstName: "Maria", LastName: "Lopez", DocumentNumber: "11222333",
			SensorID: &sensorID, Status: types.WorkerActive,
		})
		gt.NoError(t, err).Required()

		entry, err := uc.Audit.RecordGranted(ctx, sensorID, at)
		gt.NoError(t, err).Required()

		gt.Value(t, entry.WorkerID).Equal(worker.ID)
		gt.Value(t, entry.WorkerName).Equal("Maria Lopez")
		gt.Value(t, entry.Status).Equal(types.AccessGranted)
	})

	t.Run("unresolvable sensor ID still produces an entry", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		ctx := context.Background()

		entry, err := uc.Audit.RecordGranted(ctx, 99, at)
		gt.NoError(t, err).Required()

		gt.Value(t, entry.WorkerID).Equal(types.WorkerID(0))
		gt.Value(t, entry.WorkerName).Equal("")

		entries, err := uc.Audit.AccessHistory(ctx, at.Add(-time.Hour), at.Add(time.Hour))
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1)
	})
}

func TestRecordDenied(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	at := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	entry, err := uc.Audit.RecordDenied(ctx, "Huella desconocida", at)
	gt.NoError(t, err).Required()
	gt.Value(t, entry.Status).Equal(types.AccessDenied)
	gt.Value(t, entry.Reason).Equal("Huella desconocida")

	// A matching security event is raised on the access side
	events, err := uc.Audit.SecurityEvents(ctx, at.Add(-time.Hour), at.Add(time.Hour), model.SeverityAccess)
	gt.NoError(t, err).Required()
	gt.Array(t, events).Length(1)
	gt.Value(t, events[0].Kind).Equal(model.SecurityEventAccessDenied)

	denied, err := uc.Audit.DeniedSince(ctx, at.Add(-time.Hour))
	gt.NoError(t, err).Required()
	gt.Array(t, denied).Length(1)
}
