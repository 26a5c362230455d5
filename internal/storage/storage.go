package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Tiliavir/project-time-tracker/internal/model"
)

// ErrSessionOpen is returned when an open session is handed to the store.
var ErrSessionOpen = errors.New("session is still open")

// TrackedData is the JSON tracking file of a single project.
// It is safe for use by multiple goroutines of one process; there is no
// locking across processes.
type TrackedData struct {
	path string
	mu   sync.Mutex
}

// New returns a store backed by the file at path. The file is created on
// the first write.
func New(path string) *TrackedData {
	return &TrackedData{path: path}
}

// Path returns the location of the tracking file.
func (d *TrackedData) Path() string {
	return d.path
}

// Load reads the tracking file. Returns an empty DataFile if not found.
func (d *TrackedData) Load() (model.DataFile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load()
}

// AddSession appends a closed session and adds its duration to the total.
func (d *TrackedData) AddSession(s model.Session) error {
	if s.Open() {
		return ErrSessionOpen
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	df, err := d.load()
	if err != nil {
		return err
	}
	df.Sessions = append(df.Sessions, s)
	df.TotalSeconds += s.DurationSeconds()
	return d.save(df)
}

// RecomputeTotalTime re-sums the durations of all stored sessions.
func (d *TrackedData) RecomputeTotalTime() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	df, err := d.load()
	if err != nil {
		return err
	}
	var total int64
	for _, s := range df.Sessions {
		total += s.DurationSeconds()
	}
	df.TotalSeconds = total
	return d.save(df)
}

// SessionsInRange returns the stored sessions that started in [from, to].
func (d *TrackedData) SessionsInRange(from, to time.Time) ([]model.Session, error) {
	df, err := d.Load()
	if err != nil {
		return nil, err
	}
	var out []model.Session
	for _, s := range df.Sessions {
		if s.Start.Before(from) || s.Start.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *TrackedData) load() (model.DataFile, error) {
	data, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return model.DataFile{Sessions: []model.Session{}}, nil
	}
	if err != nil {
		return model.DataFile{}, fmt.Errorf("storage error reading %s: %w", d.path, err)
	}
	if len(data) == 0 {
		return model.DataFile{Sessions: []model.Session{}}, nil
	}

	var df model.DataFile
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := d.path + ".corrupt"
		_ = os.Rename(d.path, backupPath)
		return model.DataFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", d.path, backupPath, err)
	}
	if df.Sessions == nil {
		df.Sessions = []model.Session{}
	}
	return df, nil
}

// save atomically writes the tracking file.
func (d *TrackedData) save(df model.DataFile) error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := d.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, d.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
