package model

import (
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ClockTime is a time of day with minute precision, independent of any date.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" into a ClockTime
func ParseClockTime(s string) (ClockTime, error) {
	var t ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return ClockTime{}, goerr.Wrap(err, "invalid clock time", goerr.V("value", s))
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return ClockTime{}, goerr.New("clock time out of range", goerr.V("value", s))
	}
	return t, nil
}

// String returns the "HH:MM" representation
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the offset from midnight in minutes
func (t ClockTime) Minutes() int {
	return t.Hour*60 + t.Minute
}

// On anchors the time of day onto the given date
func (t ClockTime) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// sinceMidnight returns the elapsed time of day of a timestamp
func sinceMidnight(at time.Time) time.Duration {
	return at.Sub(BusinessDate(at))
}

// ShiftConfig is the system-wide shift window and clock configuration.
// A shift whose end is numerically earlier than its start crosses midnight
// (night shift); this is derived, never stored.
type ShiftConfig struct {
	WorkStart        ClockTime
	WorkEnd          ClockTime
	ToleranceMinutes int
	EntryLeadMinutes int // how early before shift start a check-in is accepted
	SimulationMode   bool
	SimulatedNow     *time.Time
	UpdatedAt        time.Time
}

// DefaultShiftConfig returns the configuration used until an operator sets one
func DefaultShiftConfig() *ShiftConfig {
	return &ShiftConfig{
		WorkStart:        ClockTime{Hour: 8},
		WorkEnd:          ClockTime{Hour: 17},
		ToleranceMinutes: 15,
		EntryLeadMinutes: 60,
	}
}

// Validate checks if the ShiftConfig is valid
func (s *ShiftConfig) Validate() error {
	if s.WorkStart == s.WorkEnd {
		return goerr.New("work start and end cannot be equal",
			goerr.V("start", s.WorkStart.String()), goerr.V("end", s.WorkEnd.String()))
	}
	if s.ToleranceMinutes < 0 {
		return goerr.New("tolerance cannot be negative", goerr.V("minutes", s.ToleranceMinutes))
	}
	if s.EntryLeadMinutes < 0 {
		return goerr.New("entry lead cannot be negative", goerr.V("minutes", s.EntryLeadMinutes))
	}
	if s.SimulationMode && s.SimulatedNow == nil {
		return goerr.New("simulation mode requires a simulated clock value")
	}
	return nil
}

// NightShift reports whether the shift crosses midnight
func (s *ShiftConfig) NightShift() bool {
	return s.WorkStart.Minutes() > s.WorkEnd.Minutes()
}

// Now returns the effective clock: the simulated timestamp when simulation
// mode is on, the wall clock otherwise.
func (s *ShiftConfig) Now() time.Time {
	if s.SimulationMode && s.SimulatedNow != nil {
		return *s.SimulatedNow
	}
	return time.Now()
}

// ShiftStart resolves the shift start instant a check-in is measured against.
// For a night shift, a check-in whose time of day falls before the shift end
// is arriving in the morning tail of a shift that began the previous calendar
// day, so the start anchors to date−1.
func (s *ShiftConfig) ShiftStart(checkIn, date time.Time) time.Time {
	if s.NightShift() {
		if sinceMidnight(checkIn) < time.Duration(s.WorkEnd.Minutes())*time.Minute {
			return s.WorkStart.On(date.AddDate(0, 0, -1))
		}
	}
	return s.WorkStart.On(date)
}

// Lateness evaluates a check-in against the shift window. The worker is late
// when the check-in is after shift start plus tolerance; the lateness
// duration is measured from shift start, not from the threshold.
func (s *ShiftConfig) Lateness(checkIn, date time.Time) (bool, time.Duration) {
	start := s.ShiftStart(checkIn, date)
	threshold := start.Add(time.Duration(s.ToleranceMinutes) * time.Minute)

	if checkIn.After(threshold) {
		return true, checkIn.Sub(start)
	}
	return false, 0
}

// InEntryWindow reports whether a check-in timestamp falls inside the allowed
// window: EntryLeadMinutes before shift start through shift end, compared as
// times of day so the window works whether or not it wraps midnight.
func (s *ShiftConfig) InEntryWindow(at time.Time) bool {
	tod := sinceMidnight(at)

	windowStart := time.Duration(s.WorkStart.Minutes()-s.EntryLeadMinutes) * time.Minute
	if windowStart < 0 {
		windowStart += 24 * time.Hour
	}
	windowEnd := time.Duration(s.WorkEnd.Minutes()) * time.Minute

	if windowStart > windowEnd {
		return tod >= windowStart || tod <= windowEnd
	}
	return tod >= windowStart && tod <= windowEnd
}
