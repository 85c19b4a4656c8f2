package schedule

import (
	"errors"
	"fmt"
	"testing"

	"sentinel_cam/internal/models"
)

func dayPlanDoc() models.ScheduleDocument {
	return models.ScheduleDocument{
		ID:      "0f8fad5b-d9cb-469f-a165-70867728950e",
		Quality: models.QualityHD,
		Windows: []models.TimingWindow{
			{Period: -1, Start: "00:00:00", End: "07:00:00"},
			{Period: 30, Start: "07:00:00", End: "12:00:00"},
			{Period: -1, Start: "12:00:00", End: "15:00:00"},
			{Period: 30, Start: "15:00:00", End: "19:00:00"},
			{Period: -1, Start: "19:00:00", End: "23:59:59"},
		},
	}
}

func clockAt(sec int) models.TimeOfDay {
	return models.TimeOfDay(fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec/60%60, sec%60))
}

func TestValidate_AcceptsDefaultAndIsIdempotent(t *testing.T) {
	b := DefaultBounds()
	for _, doc := range []models.ScheduleDocument{Default(), dayPlanDoc()} {
		for i := 0; i < 3; i++ {
			if err := b.Validate(doc); err != nil {
				t.Fatalf("Validate(%s) pass %d: unexpected error: %v", doc.ID, i, err)
			}
		}
	}
}

func TestValidate_AcceptsAnyInputOrder(t *testing.T) {
	doc := dayPlanDoc()
	w := doc.Windows
	doc.Windows = []models.TimingWindow{w[3], w[0], w[4], w[2], w[1]}
	if err := DefaultBounds().Validate(doc); err != nil {
		t.Fatalf("shuffled windows rejected: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	mutate := func(f func(d *models.ScheduleDocument)) models.ScheduleDocument {
		d := dayPlanDoc().Clone()
		f(&d)
		return d
	}

	cases := []struct {
		name string
		doc  models.ScheduleDocument
	}{
		{"uuid_garbage", mutate(func(d *models.ScheduleDocument) { d.ID = "not-a-uuid" })},
		{"uuid_version_1", mutate(func(d *models.ScheduleDocument) { d.ID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8" })},
		{"uuid_braced", mutate(func(d *models.ScheduleDocument) { d.ID = "{0f8fad5b-d9cb-469f-a165-70867728950e}" })},
		{"uuid_bad_variant", mutate(func(d *models.ScheduleDocument) { d.ID = "0f8fad5b-d9cb-469f-c165-70867728950e" })},
		{"quality_unknown", mutate(func(d *models.ScheduleDocument) { d.Quality = "8K" })},
		{"no_windows", mutate(func(d *models.ScheduleDocument) { d.Windows = nil })},
		{"period_zero", mutate(func(d *models.ScheduleDocument) { d.Windows[1].Period = 0 })},
		{"period_below_min", mutate(func(d *models.ScheduleDocument) { d.Windows[1].Period = 4 })},
		{"period_above_max", mutate(func(d *models.ScheduleDocument) { d.Windows[1].Period = 3601 })},
		{"period_minus_two", mutate(func(d *models.ScheduleDocument) { d.Windows[1].Period = -2 })},
		{"hour_out_of_range", mutate(func(d *models.ScheduleDocument) { d.Windows[0].End = "24:00:00"; d.Windows[1].Start = "24:00:00" })},
		{"not_zero_padded", mutate(func(d *models.ScheduleDocument) { d.Windows[0].End = "7:00:00"; d.Windows[1].Start = "7:00:00" })},
		{"start_equals_end", mutate(func(d *models.ScheduleDocument) { d.Windows[1].End = "07:00:00" })},
		{"gap", mutate(func(d *models.ScheduleDocument) { d.Windows[1].End = "11:00:00" })},
		{"overlap", mutate(func(d *models.ScheduleDocument) { d.Windows[1].End = "13:00:00" })},
		{"late_first_start", mutate(func(d *models.ScheduleDocument) { d.Windows[0].Start = "00:00:01" })},
		{"early_last_end", mutate(func(d *models.ScheduleDocument) { d.Windows[4].End = "23:59:58" })},
		{"missing_window", mutate(func(d *models.ScheduleDocument) { d.Windows = append(d.Windows[:2], d.Windows[3:]...) })},
	}

	b := DefaultBounds()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := b.Validate(tc.doc)
			if err == nil {
				t.Fatalf("expected validation error, got nil")
			}
			var verr *models.ValidationError
			if !errors.As(err, &verr) || !errors.Is(err, models.ErrConfigValidation) {
				t.Fatalf("expected *ValidationError wrapping ErrConfigValidation, got %T: %v", err, err)
			}
		})
	}
}

func TestValidate_RejectsNonPartitionRegardlessOfOrder(t *testing.T) {
	doc := dayPlanDoc()
	doc.Windows[2].End = "14:00:00" // gap 14:00-15:00
	w := doc.Windows
	orders := [][]int{{0, 1, 2, 3, 4}, {4, 3, 2, 1, 0}, {2, 0, 4, 1, 3}}
	for _, order := range orders {
		d := doc.Clone()
		d.Windows = d.Windows[:0]
		for _, i := range order {
			d.Windows = append(d.Windows, w[i])
		}
		if err := DefaultBounds().Validate(d); err == nil {
			t.Fatalf("order %v: expected gap to be rejected", order)
		}
	}
}

func TestValidate_CustomBounds(t *testing.T) {
	b := Bounds{MinPeriod: 60, MaxPeriod: 120}
	if err := b.Validate(dayPlanDoc()); err == nil {
		t.Fatalf("period 30 should be out of [60,120]")
	}
}
