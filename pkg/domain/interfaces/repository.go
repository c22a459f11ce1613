package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Badge() BadgeRepository
	Attendance() AttendanceRepository
	Worker() WorkerRepository
	AccessLog() AccessLogRepository
	SecurityEvent() SecurityEventRepository
	ShiftConfig() ShiftConfigRepository

	Close() error
}
