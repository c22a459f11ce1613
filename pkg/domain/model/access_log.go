package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// AccessLog is one entry of the append-only restricted-area audit trail.
// WorkerID is zero when the sensor ID could not be resolved to a worker;
// WorkerName snapshots the resolution result at write time.
type AccessLog struct {
	ID         string
	WorkerID   types.WorkerID
	WorkerName string
	SensorID   *types.SensorID // nil for denied attempts with no reported ID
	Status     types.AccessStatus
	Reason     string // denial reason, empty when granted
	At         time.Time
	CreatedAt  time.Time
}

// NewAccessLogID generates a new unique access log ID
func NewAccessLogID() string {
	return uuid.NewString()
}
