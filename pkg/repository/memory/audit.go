package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

type accessLogRepository struct {
	mu      sync.RWMutex
	entries []*model.AccessLog
}

func newAccessLogRepository() *accessLogRepository {
	return &accessLogRepository{}
}

func copyAccessLog(e *model.AccessLog) *model.AccessLog {
	copied := *e
	if e.SensorID != nil {
		sensor := *e.SensorID
		copied.SensorID = &sensor
	}
	return &copied
}

func (r *accessLogRepository) Put(ctx context.Context, entry *model.AccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, copyAccessLog(entry))
	return nil
}

func sortAccessLogsDesc(entries []*model.AccessLog) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].At.After(entries[j].At)
	})
}

func (r *accessLogRepository) ListByTimeRange(ctx context.Context, from, to time.Time) ([]*model.AccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*model.AccessLog
	for _, entry := range r.entries {
		if entry.At.Before(from) || entry.At.After(to) {
			continue
		}
		entries = append(entries, copyAccessLog(entry))
	}

	sortAccessLogsDesc(entries)
	return entries, nil
}

func (r *accessLogRepository) ListByWorker(ctx context.Context, workerID types.WorkerID) ([]*model.AccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*model.AccessLog
	for _, entry := range r.entries {
		if entry.WorkerID == workerID {
			entries = append(entries, copyAccessLog(entry))
		}
	}

	sortAccessLogsDesc(entries)
	return entries, nil
}

func (r *accessLogRepository) ListDeniedSince(ctx context.Context, since time.Time) ([]*model.AccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*model.AccessLog
	for _, entry := range r.entries {
		if entry.Status == types.AccessDenied && !entry.At.Before(since) {
			entries = append(entries, copyAccessLog(entry))
		}
	}

	sortAccessLogsDesc(entries)
	return entries, nil
}

type securityEventRepository struct {
	mu     sync.RWMutex
	events []*model.SecurityEvent
}

func newSecurityEventRepository() *securityEventRepository {
	return &securityEventRepository{}
}

func (r *securityEventRepository) Put(ctx context.Context, event *model.SecurityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *securityEventRepository) ListByTimeRange(ctx context.Context, from, to time.Time, severity string) ([]*model.SecurityEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*model.SecurityEvent
	for _, event := range r.events {
		if event.At.Before(from) || event.At.After(to) {
			continue
		}
		if severity != "" && event.Severity != severity {
			continue
		}
		copied := *event
		events = append(events, &copied)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].At.After(events[j].At)
	})
	return events, nil
}
