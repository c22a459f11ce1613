package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

type accessLogRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAccessLogRepository(client *firestore.Client) *accessLogRepository {
	return &accessLogRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *accessLogRepository) accessLogsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_access_logs"
	}
	return "access_logs"
}

func (r *accessLogRepository) Put(ctx context.Context, entry *model.AccessLog) error {
	_, err := r.client.Collection(r.accessLogsCollection()).Doc(entry.ID).Set(ctx, entry)
	if err != nil {
		return goerr.Wrap(err, "failed to put access log", goerr.V("id", entry.ID))
	}
	return nil
}

func (r *accessLogRepository) ListByTimeRange(ctx context.Context, from, to time.Time) ([]*model.AccessLog, error) {
	iter := r.client.Collection(r.accessLogsCollection()).
		Where("At", ">=", from).
		Where("At", "<=", to).
		OrderBy("At", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectAccessLogs(iter)
}

func (r *accessLogRepository) ListByWorker(ctx context.Context, workerID types.WorkerID) ([]*model.AccessLog, error) {
	iter := r.client.Collection(r.accessLogsCollection()).
		Where("WorkerID", "==", int64(workerID)).
		OrderBy("At", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectAccessLogs(iter)
}

func (r *accessLogRepository) ListDeniedSince(ctx context.Context, since time.Time) ([]*model.AccessLog, error) {
	iter := r.client.Collection(r.accessLogsCollection()).
		Where("Status", "==", string(types.AccessDenied)).
		Where("At", ">=", since).
		OrderBy("At", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectAccessLogs(iter)
}

func collectAccessLogs(iter *firestore.DocumentIterator) ([]*model.AccessLog, error) {
	var entries []*model.AccessLog
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate access logs")
		}

		var entry model.AccessLog
		if err := docSnap.DataTo(&entry); err != nil {
			return nil, goerr.Wrap(err, "failed to decode access log", goerr.V("doc_id", docSnap.Ref.ID))
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

type securityEventRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSecurityEventRepository(client *firestore.Client) *securityEventRepository {
	return &securityEventRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *securityEventRepository) securityEventsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_security_events"
	}
	return "security_events"
}

func (r *securityEventRepository) Put(ctx context.Context, event *model.SecurityEvent) error {
	_, err := r.client.Collection(r.securityEventsCollection()).Doc(event.ID).Set(ctx, event)
	if err != nil {
		return goerr.Wrap(err, "failed to put security event", goerr.V("id", event.ID))
	}
	return nil
}

func (r *securityEventRepository) ListByTimeRange(ctx context.Context, from, to time.Time, severity string) ([]*model.SecurityEvent, error) {
	query := r.client.Collection(r.securityEventsCollection()).
		Where("At", ">=", from).
		Where("At", "<=", to)
	if severity != "" {
		query = query.Where("Severity", "==", severity)
	}

	iter := query.OrderBy("At", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var events []*model.SecurityEvent
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate security events")
		}

		var event model.SecurityEvent
		if err := docSnap.DataTo(&event); err != nil {
			return nil, goerr.Wrap(err, "failed to decode security event", goerr.V("doc_id", docSnap.Ref.ID))
		}
		events = append(events, &event)
	}

	return events, nil
}
