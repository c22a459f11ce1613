package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

type badgeRepository struct {
	mu     sync.RWMutex
	badges map[types.BadgeID]*model.Badge
}

func newBadgeRepository() *badgeRepository {
	return &badgeRepository{
		badges: make(map[types.BadgeID]*model.Badge),
	}
}

func copyBadge(b *model.Badge) *model.Badge {
	copied := *b
	if b.LastSeenAt != nil {
		seen := *b.LastSeenAt
		copied.LastSeenAt = &seen
	}
	return &copied
}

func (r *badgeRepository) Get(ctx context.Context, id types.BadgeID) (*model.Badge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	badge, exists := r.badges[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "badge not found", goerr.V("id", id))
	}
	return copyBadge(badge), nil
}

func (r *badgeRepository) Observe(ctx context.Context, id types.BadgeID, at time.Time) (*model.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	badge, exists := r.badges[id]
	if !exists {
		now := time.Now().UTC()
		badge = &model.Badge{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.badges[id] = badge
	}

	seen := at
	badge.LastSeenAt = &seen
	badge.UpdatedAt = time.Now().UTC()

	return copyBadge(badge), nil
}

func (r *badgeRepository) Ensure(ctx context.Context, id types.BadgeID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.badges[id]; exists {
		return false, nil
	}

	now := time.Now().UTC()
	r.badges[id] = &model.Badge{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return true, nil
}

func (r *badgeRepository) Claim(ctx context.Context, id types.BadgeID, owner types.WorkerID) (*model.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	badge, exists := r.badges[id]
	if !exists {
		now := time.Now().UTC()
		badge = &model.Badge{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.badges[id] = badge
	}

	if badge.OwnerID != 0 && badge.OwnerID != owner {
		return nil, goerr.Wrap(model.ErrBadgeClaimed, "badge has a different owner",
			goerr.V("id", id), goerr.V("owner", badge.OwnerID))
	}

	badge.OwnerID = owner
	badge.UpdatedAt = time.Now().UTC()

	return copyBadge(badge), nil
}

func (r *badgeRepository) Release(ctx context.Context, id types.BadgeID, owner types.WorkerID) (*model.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	badge, exists := r.badges[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "badge not found", goerr.V("id", id))
	}

	if badge.OwnerID != owner {
		return nil, goerr.Wrap(model.ErrBadgeNotOwned, "badge owner mismatch",
			goerr.V("id", id), goerr.V("owner", badge.OwnerID), goerr.V("caller", owner))
	}

	badge.OwnerID = 0
	badge.UpdatedAt = time.Now().UTC()

	return copyBadge(badge), nil
}

func (r *badgeRepository) ReleaseByWorker(ctx context.Context, owner types.WorkerID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	released := 0
	for _, badge := range r.badges {
		if badge.OwnerID == owner {
			badge.OwnerID = 0
			badge.UpdatedAt = time.Now().UTC()
			released++
		}
	}
	return released, nil
}

func (r *badgeRepository) ListUnclaimed(ctx context.Context) ([]*model.Badge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var badges []*model.Badge
	for _, badge := range r.badges {
		if badge.OwnerID == 0 {
			badges = append(badges, copyBadge(badge))
		}
	}

	sort.Slice(badges, func(i, j int) bool { return badges[i].ID < badges[j].ID })
	return badges, nil
}

func (r *badgeRepository) List(ctx context.Context) ([]*model.Badge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	badges := make([]*model.Badge, 0, len(r.badges))
	for _, badge := range r.badges {
		badges = append(badges, copyBadge(badge))
	}

	sort.Slice(badges, func(i, j int) bool { return badges[i].ID < badges[j].ID })
	return badges, nil
}
