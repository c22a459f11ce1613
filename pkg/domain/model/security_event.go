package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/taller-iot/marcaje/pkg/domain/types"
)

// Security event kinds recorded by the ingestion pipeline.
const (
	SecurityEventUnknownBadge = "UNKNOWN_RFID"
	SecurityEventAccessDenied = "ACCESS_DENIED"
)

// Security event severities. The hardware distinguishes attendance-side and
// access-side incidents.
const (
	SeverityAttendance = "ATTENDANCE"
	SeverityAccess     = "ACCESS"
)

// SecurityEvent records an anomaly observed by the hardware: an unregistered
// badge scan or a rejected fingerprint.
type SecurityEvent struct {
	ID          string
	Kind        string
	Description string
	Severity    string
	BadgeID     types.BadgeID // set for unknown badge scans, empty otherwise
	At          time.Time
}

// NewSecurityEventID generates a new unique security event ID
func NewSecurityEventID() string {
	return uuid.NewString()
}
