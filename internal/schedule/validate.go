// Package schedule validates schedule documents, selects the window active
// at a given time of day and persists documents on disk.
package schedule

import (
	"sort"
	"strings"

	"sentinel_cam/internal/models"

	"github.com/google/uuid"
)

// Period bounds used when the caller does not configure its own.
const (
	DefaultMinPeriod = 5
	DefaultMaxPeriod = 3600
)

// Bounds limits the period of every non-off window.
type Bounds struct {
	MinPeriod int
	MaxPeriod int
}

// DefaultBounds returns the factory period limits.
func DefaultBounds() Bounds {
	return Bounds{MinPeriod: DefaultMinPeriod, MaxPeriod: DefaultMaxPeriod}
}

// Validate checks every rule a document must satisfy. The first violation
// is returned as a *models.ValidationError.
func (b Bounds) Validate(doc models.ScheduleDocument) error {
	if err := validateID(doc.ID); err != nil {
		return err
	}
	if !doc.Quality.Valid() {
		return models.Invalidf("invalid quality %q: must be 4K, 3K or HD", doc.Quality)
	}
	if len(doc.Windows) == 0 {
		return models.Invalidf("timing must contain at least one window")
	}
	for i, w := range doc.Windows {
		if err := b.validatePeriod(w.Period); err != nil {
			return models.Invalidf("window %d: %v", i, err)
		}
		if !w.Start.Valid() {
			return models.Invalidf("window %d: invalid start %q, expected HH:MM:SS", i, w.Start)
		}
		if !w.End.Valid() {
			return models.Invalidf("window %d: invalid end %q, expected HH:MM:SS", i, w.End)
		}
		if !w.Start.Before(w.End) {
			return models.Invalidf("window %d: start %s must be before end %s", i, w.Start, w.End)
		}
	}
	return validateCoverage(doc.Windows)
}

// validateID accepts only the canonical 36-character form of a version 4 UUID.
func validateID(id string) error {
	if len(id) != 36 {
		return models.Invalidf("invalid uuid %q", id)
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return models.Invalidf("invalid uuid %q: %v", id, err)
	}
	if u.Version() != 4 || u.Variant() != uuid.RFC4122 {
		return models.Invalidf("invalid uuid %q: not a version 4 uuid", id)
	}
	return nil
}

func (b Bounds) validatePeriod(p int) error {
	if p == models.OffPeriod {
		return nil
	}
	if p < b.MinPeriod || p > b.MaxPeriod {
		return models.Invalidf("period %d must be -1 or between %d and %d", p, b.MinPeriod, b.MaxPeriod)
	}
	return nil
}

// validateCoverage requires the windows, once sorted by start, to tile the
// whole day without gaps or overlaps.
func validateCoverage(windows []models.TimingWindow) error {
	sorted := Sorted(windows)
	if sorted[0].Start != models.DayStart {
		return models.Invalidf("first window must start at %s, got %s", models.DayStart, sorted[0].Start)
	}
	last := sorted[len(sorted)-1]
	if last.End != models.DayEnd {
		return models.Invalidf("last window must end at %s, got %s", models.DayEnd, last.End)
	}
	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i].End != sorted[i+1].Start {
			return models.Invalidf("windows must be contiguous: %s-%s is followed by %s-%s",
				sorted[i].Start, sorted[i].End, sorted[i+1].Start, sorted[i+1].End)
		}
	}
	return nil
}

// Sorted returns a copy of windows ordered by start time.
func Sorted(windows []models.TimingWindow) []models.TimingWindow {
	out := append([]models.TimingWindow(nil), windows...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Compare(string(out[i].Start), string(out[j].Start)) < 0
	})
	return out
}
