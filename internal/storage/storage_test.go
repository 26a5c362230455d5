package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Tiliavir/project-time-tracker/internal/model"
	"github.com/Tiliavir/project-time-tracker/internal/storage"
)

func closedSession(id string, start time.Time, d time.Duration) model.Session {
	return model.NewSession(id, start).Close(start.Add(d))
}

func TestLoadNotExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".timetracker")
	df, err := storage.New(path).Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(df.Sessions) != 0 {
		t.Errorf("Load sessions = %d, want 0", len(df.Sessions))
	}
	if df.TotalSeconds != 0 {
		t.Errorf("Load total = %d, want 0", df.TotalSeconds)
	}
}

func TestAddSessionAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", ".timetracker")
	store := storage.New(path)
	start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

	if err := store.AddSession(closedSession("s1", start, 90*time.Second)); err != nil {
		t.Fatalf("AddSession: %v", err)
	}
	if err := store.AddSession(closedSession("s2", start.Add(time.Hour), 30*time.Second)); err != nil {
		t.Fatalf("AddSession: %v", err)
	}

	df, err := store.Load()
	if err != nil {
		t.Fatalf("Load after add: %v", err)
	}
	if len(df.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(df.Sessions))
	}
	if df.Sessions[0].ID != "s1" || df.Sessions[1].ID != "s2" {
		t.Errorf("sessions out of append order: %q, %q", df.Sessions[0].ID, df.Sessions[1].ID)
	}
	if df.Sessions[0].Running {
		t.Error("stored session still marked running")
	}
	if df.TotalSeconds != 120 {
		t.Errorf("total = %d, want 120", df.TotalSeconds)
	}
}

func TestAddSessionRejectsOpen(t *testing.T) {
	store := storage.New(filepath.Join(t.TempDir(), ".timetracker"))
	err := store.AddSession(model.NewSession("open", time.Now()))
	if !errors.Is(err, storage.ErrSessionOpen) {
		t.Fatalf("AddSession(open) err = %v, want ErrSessionOpen", err)
	}
	if _, statErr := os.Stat(store.Path()); !os.IsNotExist(statErr) {
		t.Error("open session must not create the tracking file")
	}
}

func TestRecomputeTotalTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".timetracker")
	start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

	// Hand-edited file with a stale total.
	data := `{
  "sessions": [
    {"id": "a", "start": "2026-02-27T09:00:00Z", "end": "2026-02-27T09:10:00Z", "running": false},
    {"id": "b", "start": "2026-02-27T10:00:00Z", "end": "2026-02-27T10:05:00Z", "running": false}
  ],
  "total_seconds": 1
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	store := storage.New(path)
	if err := store.RecomputeTotalTime(); err != nil {
		t.Fatalf("RecomputeTotalTime: %v", err)
	}
	df, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if df.TotalSeconds != 900 {
		t.Errorf("total = %d, want 900", df.TotalSeconds)
	}
	if !df.Sessions[0].Start.Equal(start) {
		t.Errorf("first start = %v, want %v", df.Sessions[0].Start, start)
	}
}

func TestLoadCorruptBacksUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".timetracker")
	if err := os.WriteFile(path, []byte("{bad json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := storage.New(path).Load()
	if err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}
	if _, err2 := os.Stat(path + ".corrupt"); os.IsNotExist(err2) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
}

func TestSessionsInRange(t *testing.T) {
	store := storage.New(filepath.Join(t.TempDir(), ".timetracker"))
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{-time.Hour, 9 * time.Hour, 30 * time.Hour} {
		s := closedSession(string(rune('a'+i)), day.Add(offset), time.Minute)
		if err := store.AddSession(s); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.SessionsInRange(day, day.Add(24*time.Hour-time.Second))
	if err != nil {
		t.Fatalf("SessionsInRange: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("SessionsInRange = %+v, want only session b", got)
	}
}
