package service

import (
	"context"
	"time"

	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/models"
	"sentinel_cam/internal/repository"
)

// JournalService writes cycle events and the status snapshot. The journal
// is diagnostic only: write failures are logged locally and never stop the
// lifecycle.
type JournalService struct {
	statusRepo repository.StatusRepo
	eventRepo  repository.EventRepo
	log        *logger.Logger
	now        func() time.Time
}

func NewJournalService(statusRepo repository.StatusRepo, eventRepo repository.EventRepo, log *logger.Logger) *JournalService {
	return &JournalService{statusRepo: statusRepo, eventRepo: eventRepo, log: log, now: time.Now}
}

// Record appends one event.
func (s *JournalService) Record(ctx context.Context, typ, description string, meta any) {
	err := s.eventRepo.Append(ctx, models.CycleEvent{
		OccurredAt:  s.now().UTC(),
		Type:        typ,
		Description: description,
		Metadata:    meta,
	})
	if err != nil {
		s.log.Local().Warnw("journal append failed", "type", typ, "err", err)
	}
}

// UpdateStatus replaces the status snapshot.
func (s *JournalService) UpdateStatus(ctx context.Context, status models.DeviceStatus) {
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = s.now().UTC()
	}
	if err := s.statusRepo.Save(ctx, status); err != nil {
		s.log.Local().Warnw("status update failed", "state", status.State, "err", err)
	}
}

// Prune drops events older than retention. A non-positive retention keeps
// everything.
func (s *JournalService) Prune(ctx context.Context, retention time.Duration) {
	if retention <= 0 {
		return
	}
	n, err := s.eventRepo.Prune(ctx, s.now().Add(-retention))
	if err != nil {
		s.log.Local().Warnw("journal prune failed", "err", err)
		return
	}
	if n > 0 {
		s.log.Debugw("journal pruned", "events", n, "retention", retention)
	}
}
