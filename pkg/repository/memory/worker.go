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

type workerRepository struct {
	mu      sync.RWMutex
	workers map[types.WorkerID]*model.Worker
	nextID  types.WorkerID
}

func newWorkerRepository() *workerRepository {
	return &workerRepository{
		workers: make(map[types.WorkerID]*model.Worker),
		nextID:  1,
	}
}

func copyWorker(w *model.Worker) *model.Worker {
	copied := *w
	if w.SensorID != nil {
		sensor := *w.SensorID
		copied.SensorID = &sensor
	}
	return &copied
}

func (r *workerRepository) Create(ctx context.Context, worker *model.Worker) (*model.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyWorker(worker)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.workers[created.ID] = created
	return copyWorker(created), nil
}

func (r *workerRepository) Get(ctx context.Context, id types.WorkerID) (*model.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	worker, exists := r.workers[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "worker not found", goerr.V("id", id))
	}
	return copyWorker(worker), nil
}

func (r *workerRepository) GetBySensorID(ctx context.Context, sensorID types.SensorID) (*model.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, worker := range r.workers {
		if worker.SensorID != nil && *worker.SensorID == sensorID {
			return copyWorker(worker), nil
		}
	}
	return nil, goerr.Wrap(ErrNotFound, "no worker with sensor ID", goerr.V("sensor_id", sensorID))
}

func (r *workerRepository) GetByDocument(ctx context.Context, documentNumber string) (*model.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, worker := range r.workers {
		if worker.DocumentNumber == documentNumber {
			return copyWorker(worker), nil
		}
	}
	return nil, goerr.Wrap(ErrNotFound, "no worker with document", goerr.V("document", documentNumber))
}

func (r *workerRepository) List(ctx context.Context) ([]*model.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workers := make([]*model.Worker, 0, len(r.workers))
	for _, worker := range r.workers {
		workers = append(workers, copyWorker(worker))
	}

	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })
	return workers, nil
}

func (r *workerRepository) Update(ctx context.Context, worker *model.Worker) (*model.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.workers[worker.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "worker not found", goerr.V("id", worker.ID))
	}

	updated := copyWorker(worker)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.workers[worker.ID] = updated
	return copyWorker(updated), nil
}
