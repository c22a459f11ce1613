package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/model"
)

type shiftConfigRepository struct {
	mu  sync.RWMutex
	cfg *model.ShiftConfig
}

func newShiftConfigRepository() *shiftConfigRepository {
	return &shiftConfigRepository{}
}

func copyShiftConfig(c *model.ShiftConfig) *model.ShiftConfig {
	copied := *c
	if c.SimulatedNow != nil {
		now := *c.SimulatedNow
		copied.SimulatedNow = &now
	}
	return &copied
}

func (r *shiftConfigRepository) Get(ctx context.Context) (*model.ShiftConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.cfg == nil {
		return nil, goerr.Wrap(ErrNotFound, "shift config not set")
	}
	return copyShiftConfig(r.cfg), nil
}

func (r *shiftConfigRepository) Put(ctx context.Context, cfg *model.ShiftConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyShiftConfig(cfg)
	stored.UpdatedAt = time.Now().UTC()
	r.cfg = stored
	return nil
}
