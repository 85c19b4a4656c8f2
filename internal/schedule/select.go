package schedule

import (
	"fmt"

	"sentinel_cam/internal/models"
)

// SelectActive returns the window of doc that contains now. The document is
// expected to be validated; the final second of the day (23:59:59) is not
// covered by any half-open window and resolves to the last one.
func SelectActive(doc models.ScheduleDocument, now models.TimeOfDay) (models.ActiveConfig, error) {
	sorted := Sorted(doc.Windows)
	for _, w := range sorted {
		if w.Contains(now) {
			return activeFrom(doc, w), nil
		}
	}
	if len(sorted) > 0 && now == models.DayEnd && sorted[len(sorted)-1].End == models.DayEnd {
		return activeFrom(doc, sorted[len(sorted)-1]), nil
	}
	return models.ActiveConfig{}, fmt.Errorf("no window of %s contains %s", doc.ID, now)
}

func activeFrom(doc models.ScheduleDocument, w models.TimingWindow) models.ActiveConfig {
	return models.ActiveConfig{
		ID:          doc.ID,
		Quality:     doc.Quality,
		Period:      w.Period,
		WindowStart: w.Start,
		WindowEnd:   w.End,
	}
}
