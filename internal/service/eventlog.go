package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sentinel_cam/internal/models"
	"sentinel_cam/internal/repository"
)

var (
	ErrInvalidTimeRange = errors.New("journal query: from is after to")
	ErrUnknownEventType = errors.New("journal query: unknown event type")
)

// EventLogService answers journal queries for the diagnostics API.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// List returns the journal entries inside f, oldest first. Events are stored
// in UTC, so the bounds are converted before they reach the repository. A
// type outside models.EventTypes is rejected rather than matching nothing.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.CycleEvent, error) {
	q, err := f.normalize()
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, q.From, q.To, q.Type)
}

func (f LogFilter) normalize() (LogFilter, error) {
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}
	f.Type = strings.ToUpper(strings.TrimSpace(f.Type))
	if f.Type != "" && !models.ValidEventType(f.Type) {
		return LogFilter{}, fmt.Errorf("%w %q", ErrUnknownEventType, f.Type)
	}
	return f, nil
}
