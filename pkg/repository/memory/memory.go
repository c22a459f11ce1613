package memory

import (
	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	badge         *badgeRepository
	attendance    *attendanceRepository
	worker        *workerRepository
	accessLog     *accessLogRepository
	securityEvent *securityEventRepository
	shiftConfig   *shiftConfigRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		badge:         newBadgeRepository(),
		attendance:    newAttendanceRepository(),
		worker:        newWorkerRepository(),
		accessLog:     newAccessLogRepository(),
		securityEvent: newSecurityEventRepository(),
		shiftConfig:   newShiftConfigRepository(),
	}
}

func (m *Memory) Badge() interfaces.BadgeRepository {
	return m.badge
}

func (m *Memory) Attendance() interfaces.AttendanceRepository {
	return m.attendance
}

func (m *Memory) Worker() interfaces.WorkerRepository {
	return m.worker
}

func (m *Memory) AccessLog() interfaces.AccessLogRepository {
	return m.accessLog
}

func (m *Memory) SecurityEvent() interfaces.SecurityEventRepository {
	return m.securityEvent
}

func (m *Memory) ShiftConfig() interfaces.ShiftConfigRepository {
	return m.shiftConfig
}

func (m *Memory) Close() error {
	return nil
}
