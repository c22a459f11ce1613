package interfaces

import (
	"context"
	"time"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// AccessLogRepository persists the append-only restricted-area audit trail
type AccessLogRepository interface {
	// Put stores an access log entry
	Put(ctx context.Context, entry *model.AccessLog) error

	// ListByTimeRange retrieves entries in [from, to], newest first
	ListByTimeRange(ctx context.Context, from, to time.Time) ([]*model.AccessLog, error)

	// ListByWorker retrieves a worker's entries, newest first
	ListByWorker(ctx context.Context, workerID types.WorkerID) ([]*model.AccessLog, error)

	// ListDeniedSince retrieves denied entries at or after the given time
	ListDeniedSince(ctx context.Context, since time.Time) ([]*model.AccessLog, error)
}

// SecurityEventRepository persists hardware anomaly events
type SecurityEventRepository interface {
	// Put stores a security event
	Put(ctx context.Context, event *model.SecurityEvent) error

	// ListByTimeRange retrieves events in [from, to], newest first, optionally
	// filtered by severity (empty string means all).
	ListByTimeRange(ctx context.Context, from, to time.Time, severity string) ([]*model.SecurityEvent, error)
}
