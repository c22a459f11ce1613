package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/repository/firestore"
	"github.com/taller-iot/marcaje/pkg/repository/memory"
)

func newFirestoreRepo(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	repo, err := firestore.New(context.Background(), projectID)
	gt.NoError(t, err).Required()
	return repo
}

func runBadgeRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Ensure creates badge once", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Badge().Ensure(ctx, "3513B5B1")
		gt.NoError(t, err).Required()
		gt.Bool(t, created).True()

		created, err = repo.Badge().Ensure(ctx, "3513B5B1")
		gt.NoError(t, err).Required()
		gt.Bool(t, created).False()

		badge, err := repo.Badge().Get(ctx, "3513B5B1")
		gt.NoError(t, err).Required()
		gt.Value(t, badge.OwnerID).Equal(types.WorkerID(0))
		gt.Bool(t, badge.Claimed()).False()
	})

	t.Run("Get returns error for unknown badge", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Badge().Get(ctx, "FFFFFFFF")
		gt.Value(t, err).NotNil()
	})

	t.Run("Observe registers badge and sets last seen", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		seenAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
		badge, err := repo.Badge().Observe(ctx, "85DB6DB1", seenAt)
		gt.NoError(t, err).Required()
		gt.Value(t, badge.LastSeenAt).NotNil()
		gt.Bool(t, badge.LastSeenAt.Equal(seenAt)).True()

		later := seenAt.Add(4 * time.Hour)
		badge, err = repo.Badge().Observe(ctx, "85DB6DB1", later)
		gt.NoError(t, err).Required()
		gt.Bool(t, badge.LastSeenAt.Equal(later)).True()
	})

	t.Run("Claim assigns pool badge to worker", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Badge().Ensure(ctx, "BA910FB1")
		gt.NoError(t, err).Required()

		badge, err := repo.Badge().Claim(ctx, "BA910FB1", 7)
		gt.NoError(t, err).Required()
		gt.Value(t, badge.OwnerID).Equal(types.WorkerID(7))
		gt.Bool(t, badge.Claimed()).True()
	})

	t.Run("Claim is idempotent for the same owner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Badge().Claim(ctx, "40C86F61", 3)
		gt.NoError(t, err).Required()

		badge, err := repo.Badge().Claim(ctx, "40C86F61", 3)
		gt.NoError(t, err).Required()
		gt.Value(t, badge.OwnerID).Equal(types.WorkerID(3))
	})

	t.Run("Claim rejects badge owned by someone else", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Badge().Claim(ctx, "FD5FC801", 3)
		gt.NoError(t, err).Required()

		_, err = repo.Badge().Claim(ctx, "FD5FC801", 9)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrBadgeClaimed)).True()
	})

	t.Run("Release returns badge to the pool", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Badge().Claim(ctx, "3513B5B1", 5)
		gt.NoError(t, err).Required()

		badge, err := repo.Badge().Release(ctx, "3513B5B1", 5)
		gt.NoError(t, err).Required()
		gt.Value(t, badge.OwnerID).Equal(types.WorkerID(0))
	})

	t.Run("Release rejects non-owner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Badge().Claim(ctx, "85DB6DB1", 5)
		gt.NoError(t, err).Required()

		_, err = repo.Badge().Release(ctx, "85DB6DB1", 6)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrBadgeNotOwned)).True()
	})

	t.Run("ReleaseByWorker frees all owned badges", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Badge().Claim(ctx, "AAAA0001", 11)
		gt.NoError(t, err).Required()
		_, err = repo.Badge().Claim(ctx, "AAAA0002", 11)
		gt.NoError(t, err).Required()
		_, err = repo.Badge().Claim(ctx, "AAAA0003", 12)
		gt.NoError(t, err).Required()

		released, err := repo.Badge().ReleaseByWorker(ctx, 11)
		gt.NoError(t, err).Required()
		gt.Value(t, released).Equal(2)

		other, err := repo.Badge().Get(ctx, "AAAA0003")
		gt.NoError(t, err).Required()
		gt.Value(t, other.OwnerID).Equal(types.WorkerID(12))
	})

	t.Run("ListUnclaimed returns only pool badges", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Badge().Ensure(ctx, "BBBB0001")
		gt.NoError(t, err).Required()
		_, err = repo.Badge().Ensure(ctx, "BBBB0002")
		gt.NoError(t, err).Required()
		_, err = repo.Badge().Claim(ctx, "BBBB0003", 4)
		gt.NoError(t, err).Required()

		unclaimed, err := repo.Badge().ListUnclaimed(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, unclaimed).Length(2)
		for _, badge := range unclaimed {
			gt.Bool(t, badge.Claimed()).False()
		}
	})
}

func TestBadgeRepository_Memory(t *testing.T) {
	runBadgeRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestBadgeRepository_Firestore(t *testing.T) {
	runBadgeRepositoryTest(t, newFirestoreRepo)
}
