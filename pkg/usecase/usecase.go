package usecase

import (
	"context"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
)

type UseCases struct {
	repo    interfaces.Repository
	mailbox interfaces.Mailbox

	Badge      *BadgeUseCase
	Attendance *AttendanceUseCase
	Resolver   *ResolverUseCase
	Audit      *AuditUseCase
	Worker     *WorkerUseCase
	Config     *ConfigUseCase
}

type Option func(*UseCases)

// WithMailbox enables operations that talk back to the device, such as
// fingerprint enrollment.
func WithMailbox(mailbox interfaces.Mailbox) Option {
	return func(uc *UseCases) {
		uc.mailbox = mailbox
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Config = NewConfigUseCase(repo)
	uc.Badge = NewBadgeUseCase(repo)
	uc.Attendance = NewAttendanceUseCase(repo, uc.Config)
	uc.Audit = NewAuditUseCase(repo)
	uc.Resolver = NewResolverUseCase(repo, uc.Attendance)
	uc.Worker = NewWorkerUseCase(repo, uc.mailbox)

	return uc
}

// shiftConfig loads the stored configuration. Any failure falls back to the
// default so ingestion keeps running when no operator has set one yet or the
// store is briefly unreachable.
func shiftConfig(ctx context.Context, repo interfaces.Repository) *model.ShiftConfig {
	cfg, err := repo.ShiftConfig().Get(ctx)
	if err != nil {
		return model.DefaultShiftConfig()
	}
	return cfg
}
