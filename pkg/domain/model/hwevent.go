package model

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// ErrUnparsablePayload is returned when a mailbox message does not match the
// grammar of its channel. The payloads are fixed phrases emitted by firmware;
// anything else is logged and skipped, never fatal.
var ErrUnparsablePayload = errors.New("unparsable hardware payload")

// Hardware message grammar. These are part of the firmware contract and must
// be matched exactly.
var (
	badgeScanPattern     = regexp.MustCompile(`Marcaje RFID: ([A-F0-9 ]+)`)
	accessGrantedPattern = regexp.MustCompile(`Puerta abierta ID: (\d+)`)
	accessDeniedPattern  = regexp.MustCompile(`Intento fallido huella|Huella desconocida`)
)

// ParseBadgeScan extracts the normalized badge ID from an attendance channel
// message ("Marcaje RFID: <hex bytes separated by spaces>").
func ParseBadgeScan(msg string) (types.BadgeID, error) {
	m := badgeScanPattern.FindStringSubmatch(msg)
	if m == nil {
		return "", goerr.Wrap(ErrUnparsablePayload, "not a badge scan message", goerr.V("message", msg))
	}
	return types.NormalizeBadgeID(m[1]), nil
}

// ParseAccessGranted extracts the sensor-assigned fingerprint ID from an
// access channel message ("Puerta abierta ID: <integer>").
func ParseAccessGranted(msg string) (types.SensorID, error) {
	m := accessGrantedPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, goerr.Wrap(ErrUnparsablePayload, "not an access granted message", goerr.V("message", msg))
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, goerr.Wrap(ErrUnparsablePayload, "sensor ID is not numeric", goerr.V("message", msg))
	}
	return types.SensorID(id), nil
}

// IsAccessDenied reports whether a security channel message is one of the
// fixed rejected-fingerprint phrases. There is no payload to extract.
func IsAccessDenied(msg string) bool {
	return accessDeniedPattern.MatchString(msg)
}
