package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

type badgeRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newBadgeRepository(client *firestore.Client) *badgeRepository {
	return &badgeRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *badgeRepository) badgesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_badges"
	}
	return "badges"
}

func (r *badgeRepository) Get(ctx context.Context, id types.BadgeID) (*model.Badge, error) {
	docSnap, err := r.client.Collection(r.badgesCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "badge not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get badge", goerr.V("id", id))
	}

	var badge model.Badge
	if err := docSnap.DataTo(&badge); err != nil {
		return nil, goerr.Wrap(err, "failed to decode badge", goerr.V("id", id))
	}

	return &badge, nil
}

func (r *badgeRepository) Observe(ctx context.Context, id types.BadgeID, at time.Time) (*model.Badge, error) {
	docRef := r.client.Collection(r.badgesCollection()).Doc(string(id))

	var observed model.Badge
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get badge")
			}
			now := time.Now().UTC()
			observed = model.Badge{
				ID:        id,
				CreatedAt: now,
				UpdatedAt: now,
			}
		} else {
			if err := doc.DataTo(&observed); err != nil {
				return goerr.Wrap(err, "failed to decode badge")
			}
		}

		seen := at
		observed.LastSeenAt = &seen
		observed.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, &observed)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to observe badge", goerr.V("id", id))
	}

	return &observed, nil
}

func (r *badgeRepository) Ensure(ctx context.Context, id types.BadgeID) (bool, error) {
	docRef := r.client.Collection(r.badgesCollection()).Doc(string(id))

	created := false
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(docRef)
		if err == nil {
			created = false
			return nil
		}
		if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get badge")
		}

		now := time.Now().UTC()
		created = true
		return tx.Set(docRef, &model.Badge{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to ensure badge", goerr.V("id", id))
	}

	return created, nil
}

func (r *badgeRepository) Claim(ctx context.Context, id types.BadgeID, owner types.WorkerID) (*model.Badge, error) {
	docRef := r.client.Collection(r.badgesCollection()).Doc(string(id))

	var claimed model.Badge
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get badge")
			}
			now := time.Now().UTC()
			claimed = model.Badge{
				ID:        id,
				CreatedAt: now,
				UpdatedAt: now,
			}
		} else {
			if err := doc.DataTo(&claimed); err != nil {
				return goerr.Wrap(err, "failed to decode badge")
			}
		}

		if claimed.OwnerID != 0 && claimed.OwnerID != owner {
			return goerr.Wrap(model.ErrBadgeClaimed, "badge has a different owner",
				goerr.V("id", id), goerr.V("owner", claimed.OwnerID))
		}

		claimed.OwnerID = owner
		claimed.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, &claimed)
	})
	if err != nil {
		return nil, err
	}

	return &claimed, nil
}

func (r *badgeRepository) Release(ctx context.Context, id types.BadgeID, owner types.WorkerID) (*model.Badge, error) {
	docRef := r.client.Collection(r.badgesCollection()).Doc(string(id))

	var released model.Badge
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "badge not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get badge")
		}
		if err := doc.DataTo(&released); err != nil {
			return goerr.Wrap(err, "failed to decode badge")
		}

		if released.OwnerID != owner {
			return goerr.Wrap(model.ErrBadgeNotOwned, "badge owner mismatch",
				goerr.V("id", id), goerr.V("owner", released.OwnerID), goerr.V("caller", owner))
		}

		released.OwnerID = 0
		released.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, &released)
	})
	if err != nil {
		return nil, err
	}

	return &released, nil
}

func (r *badgeRepository) ReleaseByWorker(ctx context.Context, owner types.WorkerID) (int, error) {
	iter := r.client.Collection(r.badgesCollection()).
		Where("OwnerID", "==", int64(owner)).
		Documents(ctx)
	defer iter.Stop()

	released := 0
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return released, goerr.Wrap(err, "failed to iterate badges", goerr.V("owner", owner))
		}

		_, err = docSnap.Ref.Update(ctx, []firestore.Update{
			{Path: "OwnerID", Value: int64(0)},
			{Path: "UpdatedAt", Value: time.Now().UTC()},
		})
		if err != nil {
			return released, goerr.Wrap(err, "failed to release badge", goerr.V("doc_id", docSnap.Ref.ID))
		}
		released++
	}

	return released, nil
}

func (r *badgeRepository) ListUnclaimed(ctx context.Context) ([]*model.Badge, error) {
	iter := r.client.Collection(r.badgesCollection()).
		Where("OwnerID", "==", int64(0)).
		Documents(ctx)
	defer iter.Stop()

	return collectBadges(iter)
}

func (r *badgeRepository) List(ctx context.Context) ([]*model.Badge, error) {
	iter := r.client.Collection(r.badgesCollection()).Documents(ctx)
	defer iter.Stop()

	return collectBadges(iter)
}

func collectBadges(iter *firestore.DocumentIterator) ([]*model.Badge, error) {
	var badges []*model.Badge
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate badges")
		}

		var badge model.Badge
		if err := docSnap.DataTo(&badge); err != nil {
			return nil, goerr.Wrap(err, "failed to decode badge", goerr.V("doc_id", docSnap.Ref.ID))
		}
		badges = append(badges, &badge)
	}

	return badges, nil
}
