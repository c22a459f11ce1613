package interfaces

import (
	"context"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// WorkerRepository is the worker directory. The ingestion core reads it to
// resolve sensor IDs; the admin surface writes it.
type WorkerRepository interface {
	// Create creates a new worker with auto-generated ID
	Create(ctx context.Context, worker *model.Worker) (*model.Worker, error)

	// Get retrieves a worker by ID
	Get(ctx context.Context, id types.WorkerID) (*model.Worker, error)

	// GetBySensorID retrieves a worker by the fingerprint sensor's assigned ID
	GetBySensorID(ctx context.Context, sensorID types.SensorID) (*model.Worker, error)

	// GetByDocument retrieves a worker by document number
	GetByDocument(ctx context.Context, documentNumber string) (*model.Worker, error)

	// List retrieves all workers
	List(ctx context.Context) ([]*model.Worker, error)

	// Update updates an existing worker
	Update(ctx context.Context, worker *model.Worker) (*model.Worker, error)
}
