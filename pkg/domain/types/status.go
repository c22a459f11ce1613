package types

// AttendanceStatus represents the lifecycle state of an attendance record
type AttendanceStatus string

const (
	AttendanceCheckedIn  AttendanceStatus = "CHECKED_IN"
	AttendanceCheckedOut AttendanceStatus = "CHECKED_OUT"
)

// IsValid checks if the attendance status is valid
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendanceCheckedIn, AttendanceCheckedOut:
		return true
	default:
		return false
	}
}

// String returns the string representation of the attendance status
func (s AttendanceStatus) String() string {
	return string(s)
}

// AccessStatus is the outcome of a restricted-area access attempt
type AccessStatus string

const (
	AccessGranted AccessStatus = "GRANTED"
	AccessDenied  AccessStatus = "DENIED"
)

// String returns the string representation of the access status
func (s AccessStatus) String() string {
	return string(s)
}

// WorkerStatus represents whether a worker is provisioned in the directory
type WorkerStatus string

const (
	WorkerActive        WorkerStatus = "ACTIVE"
	WorkerDeprovisioned WorkerStatus = "DEPROVISIONED"
)

// String returns the string representation of the worker status
func (s WorkerStatus) String() string {
	return string(s)
}
