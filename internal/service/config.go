package service

import (
	"errors"
	"fmt"
	"sync"

	"sentinel_cam/internal/device"
	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/models"
	"sentinel_cam/internal/schedule"
)

// ConfigService owns the schedule document and the active window derived
// from it. The document is only ever replaced as a whole.
type ConfigService struct {
	store  *schedule.Store
	bounds schedule.Bounds
	clock  device.Clock
	log    *logger.Logger

	mu      sync.RWMutex
	doc     models.ScheduleDocument
	active  models.ActiveConfig
	loadErr error
}

func NewConfigService(store *schedule.Store, bounds schedule.Bounds, clock device.Clock, log *logger.Logger) *ConfigService {
	return &ConfigService{store: store, bounds: bounds, clock: clock, log: log}
}

// Load reads the persisted document. On any failure the built-in default is
// used instead and the error is kept for TakeLoadError, so it can be
// reported once the link is up. The returned error is that same failure.
func (s *ConfigService) Load() error {
	doc, err := s.store.Load()
	if err != nil {
		s.log.Errorw("loading config failed, using default config", "path", s.store.Path(), "err", err)
		doc = schedule.Default()
	} else {
		s.log.Infow("config loaded", "uuid", doc.ID, "quality", doc.Quality, "windows", len(doc.Windows))
	}

	s.mu.Lock()
	s.doc = doc
	s.loadErr = err
	s.mu.Unlock()

	if rerr := s.Refresh(); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

// Refresh reselects the active window for the current time of day.
func (s *ConfigService) Refresh() error {
	now := s.clock.TimeOfDay()

	s.mu.Lock()
	defer s.mu.Unlock()
	active, err := schedule.SelectActive(s.doc, now)
	if err != nil {
		return fmt.Errorf("select active window: %w", err)
	}
	if active != s.active {
		s.log.Infow("active config", "uuid", active.ID, "period", active.Period,
			"start", active.WindowStart, "end", active.WindowEnd)
	}
	s.active = active
	return nil
}

// Apply parses and validates raw, persists it atomically and only then
// replaces the in-memory document. Any failure leaves the current document
// in place. Validation failures match models.ErrConfigValidation.
func (s *ConfigService) Apply(raw []byte) (models.ScheduleDocument, error) {
	doc, err := s.bounds.Parse(raw)
	if err != nil {
		return models.ScheduleDocument{}, err
	}
	if err := s.store.Save(doc); err != nil {
		return models.ScheduleDocument{}, fmt.Errorf("persist config: %w", err)
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	s.log.Infow("config replaced", "uuid", doc.ID, "quality", doc.Quality)
	if err := s.Refresh(); err != nil {
		s.log.Errorw("reselecting active config failed", "uuid", doc.ID, "err", err)
	}
	return doc.Clone(), nil
}

// Document returns a copy of the current schedule document.
func (s *ConfigService) Document() models.ScheduleDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Active returns the window selected by the last Load, Apply or Refresh.
func (s *ConfigService) Active() models.ActiveConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// TakeLoadError returns the startup load failure once, then nil.
func (s *ConfigService) TakeLoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.loadErr
	s.loadErr = nil
	return err
}
