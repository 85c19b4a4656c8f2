package service

import (
	"context"
	"time"

	"sentinel_cam/internal/models"
	"sentinel_cam/internal/repository"
)

const stateUnknown = "UNKNOWN"

type MonitoringService struct {
	statusRepo repository.StatusRepo
}

func NewMonitoringService(statusRepo repository.StatusRepo) *MonitoringService {
	return &MonitoringService{statusRepo: statusRepo}
}

// GetStatus returns the latest persisted device status.
// If nothing was persisted yet, returns a baseline UNKNOWN snapshot.
func (s *MonitoringService) GetStatus(ctx context.Context) (models.DeviceStatus, error) {
	status, err := s.statusRepo.Load(ctx)
	if err != nil {
		return models.DeviceStatus{}, err
	}
	if status.ID == 0 {
		return s.baselineStatus(), nil
	}
	status.UpdatedAt = toUTC(status.UpdatedAt)
	return status, nil
}

// baselineStatus returns the snapshot reported before the first cycle ran.
func (s *MonitoringService) baselineStatus() models.DeviceStatus {
	return models.DeviceStatus{
		ID:        1, // DB schema enforces single-row status with id=1
		State:     stateUnknown,
		UpdatedAt: time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
