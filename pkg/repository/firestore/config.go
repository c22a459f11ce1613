package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/taller-iot/marcaje/pkg/domain/model"
)

type shiftConfigRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newShiftConfigRepository(client *firestore.Client) *shiftConfigRepository {
	return &shiftConfigRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *shiftConfigRepository) configCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_config"
	}
	return "config"
}

func (r *shiftConfigRepository) shiftConfigDoc() string {
	return "shift"
}

func (r *shiftConfigRepository) Get(ctx context.Context) (*model.ShiftConfig, error) {
	docSnap, err := r.client.Collection(r.configCollection()).Doc(r.shiftConfigDoc()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "shift config not set")
		}
		return nil, goerr.Wrap(err, "failed to get shift config")
	}

	var cfg model.ShiftConfig
	if err := docSnap.DataTo(&cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to decode shift config")
	}

	return &cfg, nil
}

func (r *shiftConfigRepository) Put(ctx context.Context, cfg *model.ShiftConfig) error {
	stored := *cfg
	stored.UpdatedAt = time.Now().UTC()

	_, err := r.client.Collection(r.configCollection()).Doc(r.shiftConfigDoc()).Set(ctx, &stored)
	if err != nil {
		return goerr.Wrap(err, "failed to put shift config")
	}
	return nil
}
