package schedule

import "sentinel_cam/internal/models"

// DefaultID identifies the built-in fallback document.
const DefaultID = "8D8AC610-566D-4EF0-9C22-186B2A5ED793"

// Default returns the document used when nothing valid is persisted.
func Default() models.ScheduleDocument {
	return models.ScheduleDocument{
		ID:      DefaultID,
		Quality: models.Quality4K,
		Windows: []models.TimingWindow{
			{Period: models.OffPeriod, Start: "00:00:00", End: "07:00:00"},
			{Period: 30, Start: "07:00:00", End: "12:00:00"},
			{Period: models.OffPeriod, Start: "12:00:00", End: "15:00:00"},
			{Period: 30, Start: "15:00:00", End: "19:00:00"},
			{Period: models.OffPeriod, Start: "19:00:00", End: "23:59:59"},
		},
	}
}
