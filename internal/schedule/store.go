package schedule

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"sentinel_cam/internal/models"
)

// Store keeps the schedule document as a JSON file.
type Store struct {
	path   string
	bounds Bounds
}

// NewStore returns a store backed by the file at path.
func NewStore(path string, bounds Bounds) *Store {
	return &Store{path: path, bounds: bounds}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Load reads, decodes and validates the persisted document.
func (s *Store) Load() (models.ScheduleDocument, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return models.ScheduleDocument{}, fmt.Errorf("read config %q: %w", s.path, err)
	}
	doc, err := s.bounds.Parse(raw)
	if err != nil {
		return models.ScheduleDocument{}, fmt.Errorf("load config %q: %w", s.path, err)
	}
	return doc, nil
}

// Save replaces the file atomically, so readers see either the old or the
// new document, and syncs the directory so the rename survives a power cut.
func (s *Store) Save(doc models.ScheduleDocument) error {
	raw, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir %q: %w", dir, err)
	}
	if err := renameio.WriteFile(s.path, raw, 0o644, renameio.WithTempDir(dir)); err != nil {
		return fmt.Errorf("replace config %q: %w", s.path, err)
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open config dir: %w", err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync config dir: %w", err)
	}
	return nil
}
