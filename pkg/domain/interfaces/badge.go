package interfaces

import (
	"context"
	"time"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// BadgeRepository persists the badge pool. Claim and Release are
// compare-and-set operations: both backends serialize them per badge so two
// concurrent claims of the same unclaimed badge cannot both succeed.
type BadgeRepository interface {
	// Get retrieves a badge by its normalized ID
	Get(ctx context.Context, id types.BadgeID) (*model.Badge, error)

	// Observe upserts a pool row for the badge and stamps its last-seen time.
	// Called for every hardware scan, claimed or not.
	Observe(ctx context.Context, id types.BadgeID, at time.Time) (*model.Badge, error)

	// Ensure creates an unclaimed pool row if the badge is unknown. Reports
	// whether a row was created.
	Ensure(ctx context.Context, id types.BadgeID) (bool, error)

	// Claim assigns the badge to a worker. Creates the pool row if absent.
	// Fails wrapping model.ErrBadgeClaimed when another worker owns it;
	// idempotent for the same owner.
	Claim(ctx context.Context, id types.BadgeID, owner types.WorkerID) (*model.Badge, error)

	// Release clears ownership. Fails wrapping model.ErrBadgeNotOwned when the
	// current owner does not match.
	Release(ctx context.Context, id types.BadgeID, owner types.WorkerID) (*model.Badge, error)

	// ReleaseByWorker returns all badges held by the worker to the pool and
	// reports how many were released.
	ReleaseByWorker(ctx context.Context, owner types.WorkerID) (int, error)

	// ListUnclaimed retrieves the pool: badges with no owner
	ListUnclaimed(ctx context.Context) ([]*model.Badge, error)

	// List retrieves all badges
	List(ctx context.Context) ([]*model.Badge, error)
}
