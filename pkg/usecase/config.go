package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
)

// ConfigUseCase manages the singleton shift configuration
type ConfigUseCase struct {
	repo interfaces.Repository
}

func NewConfigUseCase(repo interfaces.Repository) *ConfigUseCase {
	return &ConfigUseCase{repo: repo}
}

// Get returns the effective configuration, the default when none is stored
func (uc *ConfigUseCase) Get(ctx context.Context) *model.ShiftConfig {
	return shiftConfig(ctx, uc.repo)
}

// Update validates and stores a new configuration
func (uc *ConfigUseCase) Update(ctx context.Context, cfg *model.ShiftConfig) (*model.ShiftConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid shift config")
	}

	if err := uc.repo.ShiftConfig().Put(ctx, cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to store shift config")
	}

	return uc.Get(ctx), nil
}

// Seed stores a configuration only when none exists yet. Used at startup to
// apply a TOML-provided default without overwriting operator changes.
func (uc *ConfigUseCase) Seed(ctx context.Context, cfg *model.ShiftConfig) error {
	if _, err := uc.repo.ShiftConfig().Get(ctx); err == nil {
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return goerr.Wrap(err, "invalid shift config")
	}

	if err := uc.repo.ShiftConfig().Put(ctx, cfg); err != nil {
		return goerr.Wrap(err, "failed to seed shift config")
	}
	return nil
}
