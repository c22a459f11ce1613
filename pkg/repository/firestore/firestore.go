package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
)

type Firestore struct {
	client        *firestore.Client
	badge         *badgeRepository
	attendance    *attendanceRepository
	worker        *workerRepository
	accessLog     *accessLogRepository
	securityEvent *securityEventRepository
	shiftConfig   *shiftConfigRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.badge.collectionPrefix = prefix
		f.attendance.collectionPrefix = prefix
		f.worker.collectionPrefix = prefix
		f.accessLog.collectionPrefix = prefix
		f.securityEvent.collectionPrefix = prefix
		f.shiftConfig.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client:        client,
		badge:         newBadgeRepository(client),
		attendance:    newAttendanceRepository(client),
		worker:        newWorkerRepository(client),
		accessLog:     newAccessLogRepository(client),
		securityEvent: newSecurityEventRepository(client),
		shiftConfig:   newShiftConfigRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Badge() interfaces.BadgeRepository {
	return f.badge
}

func (f *Firestore) Attendance() interfaces.AttendanceRepository {
	return f.attendance
}

func (f *Firestore) Worker() interfaces.WorkerRepository {
	return f.worker
}

func (f *Firestore) AccessLog() interfaces.AccessLogRepository {
	return f.accessLog
}

func (f *Firestore) SecurityEvent() interfaces.SecurityEventRepository {
	return f.securityEvent
}

func (f *Firestore) ShiftConfig() interfaces.ShiftConfigRepository {
	return f.shiftConfig
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
