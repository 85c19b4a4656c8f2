package schedule

import (
	"testing"

	"sentinel_cam/internal/models"
)

func TestSelectActive_MidMorningWindow(t *testing.T) {
	got, err := SelectActive(dayPlanDoc(), "10:00:00")
	if err != nil {
		t.Fatalf("SelectActive() error = %v", err)
	}
	want := models.ActiveConfig{
		ID:          dayPlanDoc().ID,
		Quality:     models.QualityHD,
		Period:      30,
		WindowStart: "07:00:00",
		WindowEnd:   "12:00:00",
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSelectActive_Boundaries(t *testing.T) {
	cases := []struct {
		now       models.TimeOfDay
		wantStart models.TimeOfDay
	}{
		{"00:00:00", "00:00:00"},
		{"06:59:59", "00:00:00"},
		{"07:00:00", "07:00:00"},
		{"12:00:00", "12:00:00"},
		{"23:59:58", "19:00:00"},
		{"23:59:59", "19:00:00"},
	}
	for _, tc := range cases {
		got, err := SelectActive(dayPlanDoc(), tc.now)
		if err != nil {
			t.Fatalf("now=%s: unexpected error: %v", tc.now, err)
		}
		if got.WindowStart != tc.wantStart {
			t.Fatalf("now=%s: got window starting %s, want %s", tc.now, got.WindowStart, tc.wantStart)
		}
	}
}

func TestSelectActive_ExactlyOneWindowForEverySecond(t *testing.T) {
	single := models.ScheduleDocument{
		ID:      DefaultID,
		Quality: models.Quality3K,
		Windows: []models.TimingWindow{{Period: 60, Start: "00:00:00", End: "23:59:59"}},
	}
	reversed := dayPlanDoc()
	for i, j := 0, len(reversed.Windows)-1; i < j; i, j = i+1, j-1 {
		reversed.Windows[i], reversed.Windows[j] = reversed.Windows[j], reversed.Windows[i]
	}

	for _, doc := range []models.ScheduleDocument{Default(), dayPlanDoc(), single, reversed} {
		if err := DefaultBounds().Validate(doc); err != nil {
			t.Fatalf("fixture invalid: %v", err)
		}
		for sec := 0; sec < 24*3600; sec++ {
			now := clockAt(sec)
			matches := 0
			for _, w := range doc.Windows {
				if w.Contains(now) {
					matches++
				}
			}
			if now != models.DayEnd && matches != 1 {
				t.Fatalf("doc %s now=%s: %d windows contain now", doc.ID, now, matches)
			}
			got, err := SelectActive(doc, now)
			if err != nil {
				t.Fatalf("doc %s now=%s: %v", doc.ID, now, err)
			}
			if now != models.DayEnd && (now.Before(got.WindowStart) || !now.Before(got.WindowEnd)) {
				t.Fatalf("doc %s now=%s: selected [%s,%s) does not contain now", doc.ID, now, got.WindowStart, got.WindowEnd)
			}
		}
	}
}

func TestSelectActive_UnvalidatedDocumentMayMiss(t *testing.T) {
	doc := models.ScheduleDocument{
		ID:      DefaultID,
		Windows: []models.TimingWindow{{Period: 30, Start: "08:00:00", End: "09:00:00"}},
	}
	if _, err := SelectActive(doc, "10:00:00"); err == nil {
		t.Fatalf("expected error when no window matches")
	}
}
