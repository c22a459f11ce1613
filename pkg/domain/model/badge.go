package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// Badge is a physical RFID credential. A badge with no owner sits in the
// pool: it is known to the system (created on first observation or by
// seeding) but produces no attendance actions until claimed. Ownership is a
// one-directional reference; the badge row is the source of truth for
// "is this badge claimed".
type Badge struct {
	ID         types.BadgeID
	OwnerID    types.WorkerID // 0 means unclaimed (pool)
	LastSeenAt *time.Time     // nil until first observed by hardware
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Claimed reports whether the badge currently has an owner
func (b *Badge) Claimed() bool {
	return b.OwnerID != 0
}

// Validate checks if the Badge is valid
func (b *Badge) Validate() error {
	if err := b.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid badge ID")
	}
	if b.OwnerID < 0 {
		return goerr.New("badge owner ID cannot be negative", goerr.V("owner", b.OwnerID))
	}
	return nil
}
