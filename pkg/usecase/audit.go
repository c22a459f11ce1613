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

// AuditUseCase records restricted-area access events reported by the door
// hardware.
type AuditUseCase struct {
	repo interfaces.Repository
}

func NewAuditUseCase(repo interfaces.Repository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// RecordGranted logs a door opening for a fingerprint the sensor accepted.
// The sensor ID is resolved to a worker when possible; an unresolvable ID
// still produces an audit entry so the trail stays complete.
func (uc *AuditUseCase) RecordGranted(ctx context.Context, sensorID types.SensorID, at time.Time) (*model.AccessLog, error) {
	entry := &model.AccessLog{
		ID:        model.NewAccessLogID(),
		SensorID:  &sensorID,
		Status:    types.AccessGranted,
		At:        at,
		CreatedAt: time.Now().UTC(),
	}

	worker, err := uc.repo.Worker().GetBySensorID(ctx, sensorID)
	if err != nil {
		logging.From(ctx).Warn("granted access for unresolvable sensor ID", "sensor_id", sensorID)
	} else {
		entry.WorkerID = worker.ID
		entry.WorkerName = worker.FullName()
	}

	if err := uc.repo.AccessLog().Put(ctx, entry); err != nil {
		return nil, goerr.Wrap(err, "failed to record granted access", goerr.V("sensor_id", sensorID))
	}

	return entry, nil
}

// RecordDenied logs a rejected fingerprint attempt. The hardware reports no
// identifier for a failed match, so the entry carries only the reason; a
// security event is raised alongside the audit entry.
func (uc *AuditUseCase) RecordDenied(ctx context.Context, reason string, at time.Time) (*model.AccessLog, error) {
	entry := &model.AccessLog{
		ID:        model.NewAccessLogID(),
		Status:    types.AccessDenied,
		Reason:    reason,
		At:        at,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.repo.AccessLog().Put(ctx, entry); err != nil {
		return nil, goerr.Wrap(err, "failed to record denied access")
	}

	event := &model.SecurityEvent{
		ID:          model.NewSecurityEventID(),
		Kind:        model.SecurityEventAccessDenied,
		Description: reason,
		Severity:    model.SeverityAccess,
		At:          at,
	}
	if err := uc.repo.SecurityEvent().Put(ctx, event); err != nil {
		return nil, goerr.Wrap(err, "failed to record denied access event")
	}

	return entry, nil
}

// AccessHistory lists audit entries in [from, to], newest first
func (uc *AuditUseCase) AccessHistory(ctx context.Context, from, to time.Time) ([]*model.AccessLog, error) {
	entries, err := uc.repo.AccessLog().ListByTimeRange(ctx, from, to)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list access logs")
	}
	return entries, nil
}

// WorkerAccessHistory lists one worker's audit entries, newest first
func (uc *AuditUseCase) WorkerAccessHistory(ctx context.Context, workerID types.WorkerID) ([]*model.AccessLog, error) {
	entries, err := uc.repo.AccessLog().ListByWorker(ctx, workerID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list worker access logs", goerr.V("worker", workerID))
	}
	return entries, nil
}

// DeniedSince lists rejected attempts at or after the cutoff
func (uc *AuditUseCase) DeniedSince(ctx context.Context, since time.Time) ([]*model.AccessLog, error) {
	entries, err := uc.repo.AccessLog().ListDeniedSince(ctx, since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list denied access logs")
	}
	return entries, nil
}

// SecurityEvents lists security events in [from, to], optionally filtered by
// severity.
func (uc *AuditUseCase) SecurityEvents(ctx context.Context, from, to time.Time, severity string) ([]*model.SecurityEvent, error) {
	events, err := uc.repo.SecurityEvent().ListByTimeRange(ctx, from, to, severity)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list security events")
	}
	return events, nil
}
