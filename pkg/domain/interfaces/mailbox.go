package interfaces

import (
	"context"

	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// MailboxEntry is one line of a device log channel: an opaque
// insertion-ordered key and the raw hardware message.
type MailboxEntry struct {
	Key     string
	Message string
}

// Mailbox is the shared key-value store the embedded hardware communicates
// through. The device appends lines to log channels; the server polls the
// tail. There is no acknowledgment protocol and no ordering guarantee beyond
// the insertion-order keys.
type Mailbox interface {
	// FetchTail retrieves the last limit entries of a channel, oldest first.
	// Returns an empty slice when the channel holds no data.
	FetchTail(ctx context.Context, ch types.Channel, limit int) ([]MailboxEntry, error)

	// Push appends a message to a channel and returns the assigned key
	Push(ctx context.Context, ch types.Channel, message string) (string, error)

	// SetCommand writes the admin command cell the firmware watches
	SetCommand(ctx context.Context, command string) error

	// GetState reads the device-reported state cell
	GetState(ctx context.Context) (string, error)

	// LastSensorID reads the sensor ID the device reports after an enrollment
	LastSensorID(ctx context.Context) (types.SensorID, error)
}
