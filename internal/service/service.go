package service

import (
	"context"
	"time"

	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/models"
	"sentinel_cam/internal/repository"
)

// Authorization guards the diagnostics API.
type Authorization interface {
	GenerateToken(subject string) (string, error)
	ParseToken(token string) (string, error)
}

// Monitoring exposes the read-only device status.
type Monitoring interface {
	GetStatus(ctx context.Context) (models.DeviceStatus, error)
}

// EventLog exposes the cycle journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.CycleEvent, error)
}

// Journal records what the lifecycle does.
type Journal interface {
	Record(ctx context.Context, typ, description string, meta any)
	UpdateStatus(ctx context.Context, status models.DeviceStatus)
	Prune(ctx context.Context, retention time.Duration)
}

// Service aggregates the journal-backed services shared by the lifecycle
// and the diagnostics API.
type Service struct {
	Authorization // nil when the API is unguarded
	Monitoring
	EventLog
	Journal
}

func NewService(repos *repository.Repository, tokens Authorization, log *logger.Logger) *Service {
	return &Service{
		Authorization: tokens,
		Monitoring:    NewMonitoringService(repos.StatusRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Journal:       NewJournalService(repos.StatusRepo, repos.EventRepo, log),
	}
}
