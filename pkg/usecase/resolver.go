package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/utils/logging"
)

// Action is the outcome of resolving a badge scan
type Action string

const (
	ActionCheckedIn  Action = "CHECKED_IN"
	ActionCheckedOut Action = "CHECKED_OUT"
	ActionIgnored    Action = "IGNORED"
)

// ResolverUseCase decides what a badge scan means: a claimed badge toggles
// its owner between checked in and checked out; an unclaimed badge is
// recorded as a security event and ignored.
type ResolverUseCase struct {
	repo       interfaces.Repository
	attendance *AttendanceUseCase
}

func NewResolverUseCase(repo interfaces.Repository, attendance *AttendanceUseCase) *ResolverUseCase {
	return &ResolverUseCase{
		repo:       repo,
		attendance: attendance,
	}
}

// Resolve processes one badge scan observed at the given time.
//
// Business-rule rejections (outside the entry window, a duplicate check-in
// racing through) are swallowed and reported as Ignored: the pipeline is
// unattended, and one bad scan must not halt ingestion.
func (uc *ResolverUseCase) Resolve(ctx context.Context, id types.BadgeID, at time.Time) (Action, error) {
	badge, err := uc.repo.Badge().Observe(ctx, id, at)
	if err != nil {
		return ActionIgnored, goerr.Wrap(err, "failed to observe badge", goerr.V("id", id))
	}

	if !badge.Claimed() {
		if err := uc.recordUnknownBadge(ctx, id, at); err != nil {
			return ActionIgnored, err
		}
		logging.From(ctx).Info("scan of unclaimed badge ignored", "badge", id)
		return ActionIgnored, nil
	}

	worker, err := uc.repo.Worker().Get(ctx, badge.OwnerID)
	if err != nil {
		return ActionIgnored, goerr.Wrap(err, "failed to resolve badge owner",
			goerr.V("badge", id), goerr.V("worker", badge.OwnerID))
	}

	active, err := uc.attendance.ActiveSession(ctx, worker.ID)
	if err != nil {
		return ActionIgnored, err
	}

	if active != nil {
		if _, err := uc.attendance.CheckOut(ctx, worker.ID, at); err != nil {
			if errors.Is(err, model.ErrNoActiveSession) {
				// Lost the race against a concurrent scan; treat as handled.
				logging.From(ctx).Warn("check-out raced with another scan", "worker", worker.ID)
				return ActionIgnored, nil
			}
			return ActionIgnored, goerr.Wrap(err, "failed to check out", goerr.V("worker", worker.ID))
		}
		return ActionCheckedOut, nil
	}

	if _, err := uc.attendance.CheckIn(ctx, worker, id, at); err != nil {
		if errors.Is(err, model.ErrOutsideWindow) || errors.Is(err, model.ErrAlreadyCheckedIn) {
			logging.From(ctx).Warn("check-in rejected",
				"worker", worker.ID, "badge", id, "reason", err.Error())
			return ActionIgnored, nil
		}
		return ActionIgnored, goerr.Wrap(err, "failed to check in", goerr.V("worker", worker.ID))
	}

	return ActionCheckedIn, nil
}

func (uc *ResolverUseCase) recordUnknownBadge(ctx context.Context, id types.BadgeID, at time.Time) error {
	event := &model.SecurityEvent{
		ID:          model.NewSecurityEventID(),
		Kind:        model.SecurityEventUnknownBadge,
		Description: fmt.Sprintf("scan of unregistered badge %s", id),
		Severity:    model.SeverityAttendance,
		BadgeID:     id,
		At:          at,
	}
	if err := uc.repo.SecurityEvent().Put(ctx, event); err != nil {
		return goerr.Wrap(err, "failed to record unknown badge event", goerr.V("badge", id))
	}
	return nil
}
