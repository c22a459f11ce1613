package types

import "github.com/m-mizutani/goerr/v2"

// Channel is a log channel in the device mailbox. Channel names are part of
// the hardware contract and must match what the firmware writes.
type Channel string

const (
	// ChannelAttendance carries RFID badge scan messages
	ChannelAttendance Channel = "asistencia"
	// ChannelAccess carries door-opened (fingerprint accepted) messages
	ChannelAccess Channel = "accesos"
	// ChannelSecurity carries rejected fingerprint messages
	ChannelSecurity Channel = "seguridad"
)

// AllChannels returns every channel the poller watches
func AllChannels() []Channel {
	return []Channel{
		ChannelAttendance,
		ChannelAccess,
		ChannelSecurity,
	}
}

// IsValid checks if the channel is one the hardware writes
func (c Channel) IsValid() bool {
	switch c {
	case ChannelAttendance, ChannelAccess, ChannelSecurity:
		return true
	default:
		return false
	}
}

// String returns the string representation of the channel
func (c Channel) String() string {
	return string(c)
}

// ParseChannel parses a string into a Channel
func ParseChannel(s string) (Channel, error) {
	ch := Channel(s)
	if !ch.IsValid() {
		return "", goerr.New("invalid channel", goerr.V("channel", s))
	}
	return ch, nil
}
