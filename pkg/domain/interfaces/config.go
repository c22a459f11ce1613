package interfaces

import (
	"context"

	"github.com/taller-iot/marcaje/pkg/domain/model"
)

// ShiftConfigRepository stores the singleton shift configuration
type ShiftConfigRepository interface {
	// Get retrieves the current configuration, wrapping ErrNotFound when none
	// has been stored yet.
	Get(ctx context.Context) (*model.ShiftConfig, error)

	// Put replaces the configuration
	Put(ctx context.Context, cfg *model.ShiftConfig) error
}
