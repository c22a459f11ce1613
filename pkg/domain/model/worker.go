package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// Worker is a directory entry for a person the hardware can identify, either
// by a claimed badge or by a sensor-assigned fingerprint ID.
type Worker struct {
	ID             types.WorkerID
	FirstName      string
	LastName       string
	DocumentNumber string
	Email          string `masq:"secret"`
	Phone          string `masq:"secret"`
	SensorID       *types.SensorID // assigned by the fingerprint sensor at enrollment
	RestrictedArea bool
	Status         types.WorkerStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName returns the display name of the worker
func (w *Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}

// Validate checks if the Worker is valid
func (w *Worker) Validate() error {
	if w.FirstName == "" {
		return goerr.New("worker first name is required")
	}
	if w.LastName == "" {
		return goerr.New("worker last name is required")
	}
	if w.DocumentNumber == "" {
		return goerr.New("worker document number is required")
	}
	return nil
}
