package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

type workerRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newWorkerRepository(client *firestore.Client) *workerRepository {
	return &workerRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *workerRepository) workersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_workers"
	}
	return "workers"
}

func (r *workerRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *workerRepository) workerCounterDoc() string {
	return "worker_counter"
}

func (r *workerRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.workerCounterDoc())

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var err error
		nextID, err = nextCounterValue(tx, counterRef)
		if err != nil {
			return err
		}
		return tx.Set(counterRef, map[string]interface{}{"value": nextID})
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return nextID, nil
}

func (r *workerRepository) Create(ctx context.Context, worker *model.Worker) (*model.Worker, error) {
	nextID, err := r.getNextID(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	now := time.Now().UTC()
	created := *worker
	created.ID = types.WorkerID(nextID)
	created.CreatedAt = now
	created.UpdatedAt = now

	docID := fmt.Sprintf("%d", created.ID)
	_, err = r.client.Collection(r.workersCollection()).Doc(docID).Set(ctx, &created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create worker", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *workerRepository) Get(ctx context.Context, id types.WorkerID) (*model.Worker, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.workersCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "worker not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get worker", goerr.V("id", id))
	}

	var worker model.Worker
	if err := docSnap.DataTo(&worker); err != nil {
		return nil, goerr.Wrap(err, "failed to decode worker", goerr.V("id", id))
	}

	return &worker, nil
}

func (r *workerRepository) GetBySensorID(ctx context.Context, sensorID types.SensorID) (*model.Worker, error) {
	iter := r.client.Collection(r.workersCollection()).
		Where("SensorID", "==", int64(sensorID)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "no worker with sensor ID", goerr.V("sensor_id", sensorID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query worker by sensor ID", goerr.V("sensor_id", sensorID))
	}

	var worker model.Worker
	if err := docSnap.DataTo(&worker); err != nil {
		return nil, goerr.Wrap(err, "failed to decode worker", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &worker, nil
}

func (r *workerRepository) GetByDocument(ctx context.Context, documentNumber string) (*model.Worker, error) {
	iter := r.client.Collection(r.workersCollection()).
		Where("DocumentNumber", "==", documentNumber).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "no worker with document", goerr.V("document", documentNumber))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query worker by document", goerr.V("document", documentNumber))
	}

	var worker model.Worker
	if err := docSnap.DataTo(&worker); err != nil {
		return nil, goerr.Wrap(err, "failed to decode worker", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &worker, nil
}

func (r *workerRepository) List(ctx context.Context) ([]*model.Worker, error) {
	iter := r.client.Collection(r.workersCollection()).Documents(ctx)
	defer iter.Stop()

	var workers []*model.Worker
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate workers")
		}

		var worker model.Worker
		if err := docSnap.DataTo(&worker); err != nil {
			return nil, goerr.Wrap(err, "failed to decode worker", goerr.V("doc_id", docSnap.Ref.ID))
		}
		workers = append(workers, &worker)
	}

	return workers, nil
}

func (r *workerRepository) Update(ctx context.Context, worker *model.Worker) (*model.Worker, error) {
	docID := fmt.Sprintf("%d", worker.ID)
	docRef := r.client.Collection(r.workersCollection()).Doc(docID)

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "worker not found", goerr.V("id", worker.ID))
		}
		return nil, goerr.Wrap(err, "failed to check worker existence", goerr.V("id", worker.ID))
	}

	var existing model.Worker
	if err := docSnap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode worker", goerr.V("id", worker.ID))
	}

	updated := *worker
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	_, err = docRef.Set(ctx, &updated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update worker", goerr.V("id", worker.ID))
	}

	return &updated, nil
}
