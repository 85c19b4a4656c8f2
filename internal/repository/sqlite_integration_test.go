package repository

import (
	"path/filepath"
	"testing"
	"time"

	"sentinel_cam/internal/models"
	"sentinel_cam/internal/repository/db"
)

func TestSQLiteJournal_RoundTrip(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	repos := NewRepository(conn)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	for i, typ := range []string{models.EventState, models.EventSync, models.EventState, models.EventDecision} {
		err := repos.EventRepo.Append(ctx(t), models.CycleEvent{
			OccurredAt:  base.Add(time.Duration(i) * time.Hour),
			Type:        typ,
			Description: typ,
			Metadata:    map[string]int{"i": i},
		})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	states, err := repos.EventRepo.List(ctx(t), base, base.Add(3*time.Hour), models.EventState)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("want 2 STATE events, got %d", len(states))
	}
	if !states[1].OccurredAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("second STATE event at %v", states[1].OccurredAt)
	}

	n, err := repos.EventRepo.Prune(ctx(t), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 2 {
		t.Fatalf("pruned %d; want 2", n)
	}
	rest, _ := repos.EventRepo.List(ctx(t), time.Time{}, time.Time{}, "")
	if len(rest) != 2 {
		t.Fatalf("want 2 events after prune, got %d", len(rest))
	}

	if got, err := repos.StatusRepo.Load(ctx(t)); err != nil || got.ID != 0 {
		t.Fatalf("empty status: %+v, %v", got, err)
	}
	want := models.DeviceStatus{State: "IDLE", ConfigID: "id", Period: 30, WindowEnd: "12:00:00", RuntimeSeconds: 3.5, Connected: true, UpdatedAt: base}
	if err := repos.StatusRepo.Save(ctx(t), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want.State = "HALTED"
	if err := repos.StatusRepo.Save(ctx(t), want); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err := repos.StatusRepo.Load(ctx(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != 1 || got.State != "HALTED" || got.Period != 30 || got.WindowEnd != "12:00:00" || !got.UpdatedAt.Equal(base) {
		t.Fatalf("unexpected status: %+v", got)
	}
}
