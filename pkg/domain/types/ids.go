package types

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// BadgeID is the normalized identifier of a physical RFID badge.
// Hardware reports badge bytes as uppercase hex separated by spaces;
// the normalized form strips separators and uppercases the rest.
type BadgeID string

var badgeIDPattern = regexp.MustCompile(`^[0-9A-Z]+$`)

var badgeSeparators = strings.NewReplacer(" ", "", ":", "", "-", "")

// NormalizeBadgeID converts a raw hardware-reported identifier into its
// canonical form: uppercase with whitespace and separators removed.
func NormalizeBadgeID(raw string) BadgeID {
	return BadgeID(badgeSeparators.Replace(strings.ToUpper(strings.TrimSpace(raw))))
}

// Validate checks if the BadgeID is in canonical form
func (x BadgeID) Validate() error {
	if x == "" {
		return goerr.New("badge ID cannot be empty")
	}
	if !badgeIDPattern.MatchString(string(x)) {
		return goerr.New("badge ID must be normalized uppercase alphanumeric", goerr.V("id", x))
	}
	return nil
}

// String returns the string representation of BadgeID
func (x BadgeID) String() string {
	return string(x)
}

// WorkerID is a unique identifier for a worker
type WorkerID int64

// Validate checks if the WorkerID is valid
func (x WorkerID) Validate() error {
	if x <= 0 {
		return goerr.New("worker ID must be positive", goerr.V("id", x))
	}
	return nil
}

// AttendanceID is a unique identifier for an attendance record
type AttendanceID int64

// SensorID is the numeric identifier a fingerprint sensor assigns to an
// enrolled print. It is hardware-scoped, not a worker ID.
type SensorID int
