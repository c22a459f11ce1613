package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/repository/memory"
	"github.com/taller-iot/marcaje/pkg/usecase"
)

// mockDevice fakes the firmware side of the enrollment handshake
type mockDevice struct {
	mu         sync.Mutex
	state      string
	sensorID   types.SensorID
	commands   []string
	stateReads int
	flipState  string
	flipAfter  int
}

func (m *mockDevice) FetchTail(ctx context.Context, ch types.Channel, limit int) ([]interfaces.MailboxEntry, error) {
	return nil, nil
}

func (m *mockDevice) Push(ctx context.Context, ch types.Channel, message string) (string, error) {
	return "", nil
}

func (m *mockDevice) SetCommand(ctx context.Context, command string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, command)
	return nil
}

func (m *mockDevice) GetState(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateReads++
	if m.flipState != "" && m.stateReads > m.flipAfter {
		return m.flipState, nil
	}
	return m.state, nil
}

func (m *mockDevice) LastSensorID(ctx context.Context) (types.SensorID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sensorID, nil
}

func TestWorkerCreate(t *testing.T) {
	t.Run("duplicate document number is rejected", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		ctx := context.Background()

		_, err := uc.Worker.Create(ctx, &model.Worker{
			FirstName: "Maria", LastName: "Lopez", DocumentNumber: "11222333",
		})
		gt.NoError(t, err).Required()

		_, err = uc.Worker.Create(ctx, &model.Worker{
			FirstName: "Other", LastName: "Person", DocumentNumber: "11222333",
		})
		gt.Value(t, err).NotNil()
	})

	t.Run("created workers start active", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		ctx := context.Background()

		worker, err := uc.Worker.Create(ctx, &model.Worker{
			FirstName: "Maria", LastName: "Lopez", DocumentNumber: "11222333",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, worker.Status).Equal(types.WorkerActive)
	})
}

func TestWorkerDeprovision(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	at := time.Date(2024, 3, 4, 8, 5, 0, 0, time.UTC)

	worker, err := uc.Worker.Create(ctx, &model.Worker{
		FirstName: "Maria", LastName: "Lopez", DocumentNumber: "11222333",
	})
	gt.NoError(t, err).Required()

	_, err = uc.Badge.Claim(ctx, "3513B5B1", worker.ID)
	gt.NoError(t, err).Required()

	record, err := uc.Attendance.CheckIn(ctx, worker, "3513B5B1", at)
	gt.NoError(t, err).Required()
	_, err = uc.Attendance.CheckOut(ctx, worker.ID, at.Add(8*time.Hour))
	gt.NoError(t, err).Required()

	deprovisioned, err := uc.Worker.Deprovision(ctx, worker.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, deprovisioned.Status).Equal(types.WorkerDeprovisioned)

	// Badge is back in the pool
	badge, err := repo.Badge().Get(ctx, "3513B5B1")
	gt.NoError(t, err).Required()
	gt.Bool(t, badge.Claimed()).False()

	// Attendance history keeps the name snapshot with a zeroed reference
	detached, err := repo.Attendance().Get(ctx, record.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, detached.WorkerID).Equal(types.WorkerID(0))
	gt.Value(t, detached.WorkerName).Equal("Maria Lopez")

	// Idempotent
	again, err := uc.Worker.Deprovision(ctx, worker.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, again.Status).Equal(types.WorkerDeprovisioned)
}

func TestWorkerEnroll(t *testing.T) {
	t.Run("attaches the device-assigned sensor ID", func(t *testing.T) {
		repo := memory.New()
		device := &mockDevice{
			state:     "esperando",
			flipState: "huella_registrada",
			flipAfter: 2,
			sensorID:  7,
		}
		uc := usecase.New(repo, usecase.WithMailbox(device))
		uc.Worker.SetEnrollPolling(5*time.Millisecond, time.Second)
		ctx := context.Background()

		worker, err := uc.Worker.Create(ctx, &model.Worker{
			FirstName: "Maria", LastName: "Lopez", DocumentNumber: "11222333",
		})
		gt.NoError(t, err).Required()

		enrolled, err := uc.Worker.Enroll(ctx, worker.ID)
		gt.NoError(t, err).Required()

		gt.Value(t, enrolled.SensorID).NotNil()
		gt.Value(t, *enrolled.SensorID).Equal(types.SensorID(7))

		device.mu.Lock()
		gt.Array(t, device.commands).Has("registrar_huella")
		device.mu.Unlock()

		found, err := repo.Worker().GetBySensorID(ctx, 7)
		gt.NoError(t, err).Required()
		gt.Value(t, found.ID).Equal(worker.ID)
	})

	t.Run("times out when the device never responds", func(t *testing.T) {
		repo := memory.New()
		device := &mockDevice{state: "esperando"}
		uc := usecase.New(repo, usecase.WithMailbox(device))
		uc.Worker.SetEnrollPolling(5*time.Millisecond, 50*time.Millisecond)
		ctx := context.Background()

		worker, err := uc.Worker.Create(ctx, &model.Worker{
			FirstName: "Maria", LastName: "Lopez", DocumentNumber: "11222333",
		})
		gt.NoError(t, err).Required()

		_, err = uc.Worker.Enroll(ctx, worker.ID)
		gt.Value(t, err).NotNil()
	})

	t.Run("fails without a mailbox", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		ctx := context.Background()

		worker, err := uc.Worker.Create(ctx, &model.Worker{
			FirstName: "Maria", LastName: "Lopez", DocumentNumber: "11222333",
		})
		gt.NoError(t, err).Required()

		_, err = uc.Worker.Enroll(ctx, worker.ID)
		gt.Value(t, err).NotNil()
	})
}
