package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// BadgeUseCase manages the badge pool: every badge the hardware has ever
// reported, claimed or not.
type BadgeUseCase struct {
	repo interfaces.Repository
}

func NewBadgeUseCase(repo interfaces.Repository) *BadgeUseCase {
	return &BadgeUseCase{repo: repo}
}

// Observe registers a hardware sighting of a badge. Unknown badges enter the
// pool unclaimed; known badges get their last-seen time bumped.
func (uc *BadgeUseCase) Observe(ctx context.Context, id types.BadgeID, at time.Time) (*model.Badge, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid badge ID")
	}

	badge, err := uc.repo.Badge().Observe(ctx, id, at)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to observe badge", goerr.V("id", id))
	}
	return badge, nil
}

// Claim assigns a pool badge to a worker. The worker must exist and be
// active; claiming is idempotent for the same pair and conflicts for anyone
// else.
func (uc *BadgeUseCase) Claim(ctx context.Context, id types.BadgeID, workerID types.WorkerID) (*model.Badge, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid badge ID")
	}

	worker, err := uc.repo.Worker().Get(ctx, workerID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get worker", goerr.V("worker", workerID))
	}
	if worker.Status != types.WorkerActive {
		return nil, goerr.New("worker is not active", goerr.V("worker", workerID), goerr.V("status", worker.Status))
	}

	badge, err := uc.repo.Badge().Claim(ctx, id, workerID)
	if err != nil {
		return nil, err
	}
	return badge, nil
}

// Release returns a worker's badge to the pool
func (uc *BadgeUseCase) Release(ctx context.Context, id types.BadgeID, workerID types.WorkerID) (*model.Badge, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid badge ID")
	}

	badge, err := uc.repo.Badge().Release(ctx, id, workerID)
	if err != nil {
		return nil, err
	}
	return badge, nil
}

// ListUnclaimed returns the badges currently in the pool
func (uc *BadgeUseCase) ListUnclaimed(ctx context.Context) ([]*model.Badge, error) {
	badges, err := uc.repo.Badge().ListUnclaimed(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list unclaimed badges")
	}
	return badges, nil
}

// List returns all known badges
func (uc *BadgeUseCase) List(ctx context.Context) ([]*model.Badge, error) {
	badges, err := uc.repo.Badge().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list badges")
	}
	return badges, nil
}

// Seed ensures a set of badge IDs exist in the pool, returning how many were
// newly created. Used to pre-register the credentials shipped with the
// hardware kit.
func (uc *BadgeUseCase) Seed(ctx context.Context, rawIDs []string) (int, error) {
	created := 0
	for _, raw := range rawIDs {
		id := types.NormalizeBadgeID(raw)
		if err := id.Validate(); err != nil {
			return created, goerr.Wrap(err, "invalid badge ID in seed set", goerr.V("raw", raw))
		}

		isNew, err := uc.repo.Badge().Ensure(ctx, id)
		if err != nil {
			return created, goerr.Wrap(err, "failed to seed badge", goerr.V("id", id))
		}
		if isNew {
			created++
		}
	}
	return created, nil
}
