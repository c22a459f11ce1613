package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/utils/logging"
)

const (
	enrollCommand      = "registrar_huella"
	enrollPollInterval = 2 * time.Second
	enrollTimeout      = 2 * time.Minute
)

// WorkerUseCase manages the worker directory and device-side enrollment
type WorkerUseCase struct {
	repo           interfaces.Repository
	mailbox        interfaces.Mailbox
	enrollInterval time.Duration
	enrollTimeout  time.Duration
}

func NewWorkerUseCase(repo interfaces.Repository, mailbox interfaces.Mailbox) *WorkerUseCase {
	return &WorkerUseCase{
		repo:           repo,
		mailbox:        mailbox,
		enrollInterval: enrollPollInterval,
		enrollTimeout:  enrollTimeout,
	}
}

// Create registers a new active worker. Document numbers are unique.
func (uc *WorkerUseCase) Create(ctx context.Context, worker *model.Worker) (*model.Worker, error) {
	worker.Status = types.WorkerActive
	if err := worker.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid worker")
	}

	if existing, err := uc.repo.Worker().GetByDocument(ctx, worker.DocumentNumber); err == nil {
		return nil, goerr.New("document number already registered",
			goerr.V("document", worker.DocumentNumber), goerr.V("worker", existing.ID))
	}

	created, err := uc.repo.Worker().Create(ctx, worker)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create worker")
	}
	return created, nil
}

// Get retrieves a worker by ID
func (uc *WorkerUseCase) Get(ctx context.Context, id types.WorkerID) (*model.Worker, error) {
	worker, err := uc.repo.Worker().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return worker, nil
}

// List retrieves all workers
func (uc *WorkerUseCase) List(ctx context.Context) ([]*model.Worker, error) {
	workers, err := uc.repo.Worker().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list workers")
	}
	return workers, nil
}

// Update applies changes to an existing worker
func (uc *WorkerUseCase) Update(ctx context.Context, worker *model.Worker) (*model.Worker, error) {
	if err := worker.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid worker")
	}

	updated, err := uc.repo.Worker().Update(ctx, worker)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Deprovision retires a worker: their badges return to the pool, their
// attendance records are tombstoned (name snapshot kept, reference zeroed),
// and the directory entry is marked DEPROVISIONED rather than deleted.
func (uc *WorkerUseCase) Deprovision(ctx context.Context, id types.WorkerID) (*model.Worker, error) {
	worker, err := uc.repo.Worker().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if worker.Status == types.WorkerDeprovisioned {
		return worker, nil
	}

	released, err := uc.repo.Badge().ReleaseByWorker(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to release badges", goerr.V("worker", id))
	}

	if err := uc.repo.Attendance().DetachWorker(ctx, id); err != nil {
		return nil, goerr.Wrap(err, "failed to detach attendance records", goerr.V("worker", id))
	}

	worker.Status = types.WorkerDeprovisioned
	worker.SensorID = nil
	updated, err := uc.repo.Worker().Update(ctx, worker)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update worker status", goerr.V("worker", id))
	}

	logging.From(ctx).Info("worker deprovisioned",
		"worker", id, "badges_released", released)

	return updated, nil
}

// Enroll runs a fingerprint enrollment round-trip with the device: write the
// command cell, wait for the firmware to report a state change, then read the
// sensor-assigned ID and attach it to the worker. The wait is a bounded poll
// because the store offers no push notification.
func (uc *WorkerUseCase) Enroll(ctx context.Context, id types.WorkerID) (*model.Worker, error) {
	if uc.mailbox == nil {
		return nil, goerr.New("no device mailbox configured")
	}

	worker, err := uc.repo.Worker().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if worker.Status != types.WorkerActive {
		return nil, goerr.New("worker is not active", goerr.V("worker", id), goerr.V("status", worker.Status))
	}

	initialState, err := uc.mailbox.GetState(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read device state")
	}

	if err := uc.mailbox.SetCommand(ctx, enrollCommand); err != nil {
		return nil, goerr.Wrap(err, "failed to send enroll command")
	}

	logging.From(ctx).Info("enrollment started, waiting for device",
		"worker", id, "initial_state", initialState)

	if err := uc.waitForStateChange(ctx, initialState); err != nil {
		return nil, err
	}

	sensorID, err := uc.mailbox.LastSensorID(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read assigned sensor ID")
	}

	worker.SensorID = &sensorID
	updated, err := uc.repo.Worker().Update(ctx, worker)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to attach sensor ID", goerr.V("worker", id))
	}

	logging.From(ctx).Info("enrollment completed", "worker", id, "sensor_id", sensorID)
	return updated, nil
}

func (uc *WorkerUseCase) waitForStateChange(ctx context.Context, initialState string) error {
	deadline := time.Now().Add(uc.enrollTimeout)
	ticker := time.NewTicker(uc.enrollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return goerr.Wrap(ctx.Err(), "enrollment cancelled")
		case <-ticker.C:
			if time.Now().After(deadline) {
				return goerr.New("device did not respond to enrollment", goerr.V("timeout", uc.enrollTimeout))
			}

			state, err := uc.mailbox.GetState(ctx)
			if err != nil {
				// Transient store failure, keep waiting
				continue
			}
			if state != initialState && state != "" {
				return nil
			}
		}
	}
}
