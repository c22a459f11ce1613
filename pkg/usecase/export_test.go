package usecase

import "time"

// SetEnrollPolling shortens the enrollment wait loop for tests
func (uc *WorkerUseCase) SetEnrollPolling(interval, timeout time.Duration) {
	uc.enrollInterval = interval
	uc.enrollTimeout = timeout
}
