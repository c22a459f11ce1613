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

type attendanceRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAttendanceRepository(client *firestore.Client) *attendanceRepository {
	return &attendanceRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *attendanceRepository) attendanceCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_attendance"
	}
	return "attendance"
}

func (r *attendanceRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *attendanceRepository) attendanceCounterDoc() string {
	return "attendance_counter"
}

func nextCounterValue(tx *firestore.Transaction, counterRef *firestore.DocumentRef) (int64, error) {
	doc, err := tx.Get(counterRef)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 1, nil
		}
		return 0, goerr.Wrap(err, "failed to get counter")
	}

	currentValue, err := doc.DataAt("value")
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get counter value")
	}

	val, ok := currentValue.(int64)
	if !ok {
		return 0, goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
	}
	return val + 1, nil
}

// CreateCheckIn allocates an ID and inserts the record in one transaction.
// The open-session query runs inside the transaction so two concurrent scans
// of the same badge cannot both pass the check.
func (r *attendanceRepository) CreateCheckIn(ctx context.Context, rec *model.AttendanceRecord) (*model.AttendanceRecord, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.attendanceCounterDoc())
	collection := r.client.Collection(r.attendanceCollection())

	var created model.AttendanceRecord
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		openQuery := collection.
			Where("WorkerID", "==", int64(rec.WorkerID)).
			Where("Status", "==", string(types.AttendanceCheckedIn)).
			Limit(1)
		iter := tx.Documents(openQuery)
		defer iter.Stop()

		openDoc, err := iter.Next()
		if err == nil {
			return goerr.Wrap(model.ErrAlreadyCheckedIn, "worker has an open session",
				goerr.V("worker", rec.WorkerID), goerr.V("record", openDoc.Ref.ID))
		}
		if err != iterator.Done {
			return goerr.Wrap(err, "failed to query open session", goerr.V("worker", rec.WorkerID))
		}

		nextID, err := nextCounterValue(tx, counterRef)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		created = *rec
		created.ID = types.AttendanceID(nextID)
		created.Status = types.AttendanceCheckedIn
		created.CreatedAt = now
		created.UpdatedAt = now

		if err := tx.Set(counterRef, map[string]interface{}{"value": nextID}); err != nil {
			return goerr.Wrap(err, "failed to update counter")
		}

		docID := fmt.Sprintf("%d", created.ID)
		return tx.Set(collection.Doc(docID), &created)
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *attendanceRepository) CloseActive(ctx context.Context, workerID types.WorkerID, at time.Time) (*model.AttendanceRecord, error) {
	collection := r.client.Collection(r.attendanceCollection())

	var closed model.AttendanceRecord
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		openQuery := collection.
			Where("WorkerID", "==", int64(workerID)).
			Where("Status", "==", string(types.AttendanceCheckedIn)).
			Limit(1)
		iter := tx.Documents(openQuery)
		defer iter.Stop()

		openDoc, err := iter.Next()
		if err == iterator.Done {
			return goerr.Wrap(model.ErrNoActiveSession, "no open session for worker",
				goerr.V("worker", workerID))
		}
		if err != nil {
			return goerr.Wrap(err, "failed to query open session", goerr.V("worker", workerID))
		}

		if err := openDoc.DataTo(&closed); err != nil {
			return goerr.Wrap(err, "failed to decode attendance record", goerr.V("doc_id", openDoc.Ref.ID))
		}

		if err := closed.Close(at); err != nil {
			return err
		}
		closed.UpdatedAt = time.Now().UTC()

		return tx.Set(openDoc.Ref, &closed)
	})
	if err != nil {
		return nil, err
	}

	return &closed, nil
}

func (r *attendanceRepository) FindActive(ctx context.Context, workerID types.WorkerID) (*model.AttendanceRecord, error) {
	iter := r.client.Collection(r.attendanceCollection()).
		Where("WorkerID", "==", int64(workerID)).
		Where("Status", "==", string(types.AttendanceCheckedIn)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(model.ErrNoActiveSession, "no open session for worker", goerr.V("worker", workerID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query open session", goerr.V("worker", workerID))
	}

	var rec model.AttendanceRecord
	if err := docSnap.DataTo(&rec); err != nil {
		return nil, goerr.Wrap(err, "failed to decode attendance record", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &rec, nil
}

func (r *attendanceRepository) Get(ctx context.Context, id types.AttendanceID) (*model.AttendanceRecord, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.attendanceCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "attendance record not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get attendance record", goerr.V("id", id))
	}

	var rec model.AttendanceRecord
	if err := docSnap.DataTo(&rec); err != nil {
		return nil, goerr.Wrap(err, "failed to decode attendance record", goerr.V("id", id))
	}

	return &rec, nil
}

func (r *attendanceRepository) ListByDateRange(ctx context.Context, from, to time.Time, late *bool) ([]*model.AttendanceRecord, error) {
	query := r.client.Collection(r.attendanceCollection()).
		Where("Date", ">=", from).
		Where("Date", "<=", to)
	if late != nil {
		query = query.Where("Late", "==", *late)
	}

	iter := query.OrderBy("CheckInAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	return collectAttendance(iter)
}

func (r *attendanceRepository) ListByWorker(ctx context.Context, workerID types.WorkerID, from, to time.Time) ([]*model.AttendanceRecord, error) {
	iter := r.client.Collection(r.attendanceCollection()).
		Where("WorkerID", "==", int64(workerID)).
		Where("Date", ">=", from).
		Where("Date", "<=", to).
		OrderBy("CheckInAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectAttendance(iter)
}

func (r *attendanceRepository) CountLate(ctx context.Context, workerID types.WorkerID, from, to time.Time) (int, error) {
	iter := r.client.Collection(r.attendanceCollection()).
		Where("WorkerID", "==", int64(workerID)).
		Where("Late", "==", true).
		Where("Date", ">=", from).
		Where("Date", "<=", to).
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count late records", goerr.V("worker", workerID))
		}
		count++
	}

	return count, nil
}

func (r *attendanceRepository) DetachWorker(ctx context.Context, workerID types.WorkerID) error {
	iter := r.client.Collection(r.attendanceCollection()).
		Where("WorkerID", "==", int64(workerID)).
		Documents(ctx)
	defer iter.Stop()

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate attendance records", goerr.V("worker", workerID))
		}

		_, err = docSnap.Ref.Update(ctx, []firestore.Update{
			{Path: "WorkerID", Value: int64(0)},
			{Path: "UpdatedAt", Value: time.Now().UTC()},
		})
		if err != nil {
			return goerr.Wrap(err, "failed to detach attendance record", goerr.V("doc_id", docSnap.Ref.ID))
		}
	}

	return nil
}

func collectAttendance(iter *firestore.DocumentIterator) ([]*model.AttendanceRecord, error) {
	var records []*model.AttendanceRecord
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate attendance records")
		}

		var rec model.AttendanceRecord
		if err := docSnap.DataTo(&rec); err != nil {
			return nil, goerr.Wrap(err, "failed to decode attendance record", goerr.V("doc_id", docSnap.Ref.ID))
		}
		records = append(records, &rec)
	}

	return records, nil
}
