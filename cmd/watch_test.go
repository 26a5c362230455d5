package cmd

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/project-time-tracker/internal/config"
	"github.com/Tiliavir/project-time-tracker/internal/model"
	"github.com/Tiliavir/project-time-tracker/internal/storage"
	"github.com/Tiliavir/project-time-tracker/internal/tracker"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{30, "30s"},
		{59, "59s"},
		{60, "1m 0s"},
		{90, "1m 30s"},
		{3600, "1h 0m 0s"},
		{3661, "1h 1m 1s"},
		{7322, "2h 2m 2s"},
	}
	for _, tt := range tests {
		got := formatElapsed(tt.seconds)
		if got != tt.want {
			t.Errorf("formatElapsed(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func newTestTracker(t *testing.T, store tracker.StoreFactory) (*tracker.Tracker, *clock.Mock) {
	t.Helper()
	root := t.TempDir()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	tr := tracker.New(func() (string, bool) { return root, true }, store, tracker.Options{
		MaxIdle:      60,
		TickInterval: 24 * time.Hour,
		Clock:        mock,
	})
	t.Cleanup(func() { tr.Stop() })
	return tr, mock
}

func TestOnActivity(t *testing.T) {
	tr, _ := newTestTracker(t, newStore)
	require.True(t, tr.Start(nil))

	tr.Tick()
	tr.Tick()
	require.Equal(t, 2, tr.IdleTime())
	onActivity(tr, nil)
	assert.Equal(t, 0, tr.IdleTime())

	require.True(t, tr.Pause())
	onActivity(tr, nil)
	assert.Equal(t, tracker.Started, tr.State())

	tr.SetSubpath("sub")
	require.Equal(t, tracker.Stopped, tr.State())
	onActivity(tr, nil)
	assert.Equal(t, tracker.Started, tr.State())
}

func TestPumpActivityEndsAtEOF(t *testing.T) {
	tr, _ := newTestTracker(t, newStore)
	require.True(t, tr.Start(nil))
	tr.Tick()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lines := readLines(ctx, strings.NewReader("edit\nsave\n"))

	require.NoError(t, pumpActivity(ctx, tr, lines, nil))
	assert.Equal(t, 0, tr.IdleTime())
	assert.Equal(t, tracker.Started, tr.State())
}

func TestApplyConfig(t *testing.T) {
	tr, _ := newTestTracker(t, newStore)
	require.True(t, tr.Start(nil))

	c := config.Default()
	c.Tracking.MaxIdleSeconds = 60
	applyConfig(tr, c)
	assert.Equal(t, tracker.Started, tr.State(), "unchanged settings keep the session")

	c.Tracking.MaxIdleSeconds = 300
	applyConfig(tr, c)
	assert.Equal(t, 300, tr.MaxIdle())
	assert.Equal(t, tracker.Started, tr.State())

	c.Tracking.Subpath = "/.vscode/"
	applyConfig(tr, c)
	assert.Equal(t, ".vscode", tr.Subpath())
	assert.Equal(t, tracker.Stopped, tr.State())

	c.Tracking.DataFileName = "  "
	applyConfig(tr, c)
	assert.Equal(t, tracker.DefaultDataFileName, tr.DataFileName())

	c.Tracking.DataFileName = "time.json"
	applyConfig(tr, c)
	assert.Equal(t, "time.json", tr.DataFileName())
}

func TestCountingStore(t *testing.T) {
	var total atomic.Int64
	tr, mock := newTestTracker(t, func(path string) tracker.Store {
		return countingStore{Store: storage.New(path), seconds: &total}
	})

	require.True(t, tr.Start(nil))
	mock.Add(90 * time.Second)
	require.True(t, tr.Pause())
	tr.Continue()
	mock.Add(30 * time.Second)
	require.True(t, tr.Stop())

	assert.Equal(t, int64(120), total.Load())

	path, ok := tr.TrackingFilePath()
	require.True(t, ok)
	df, err := storage.New(path).Load()
	require.NoError(t, err)
	assert.Len(t, df.Sessions, 2)
	assert.Equal(t, int64(120), df.TotalSeconds)
}

func TestStatusLineTransitions(t *testing.T) {
	var buf bytes.Buffer
	status := newStatusLine(&buf, false)
	tr, _ := newTestTracker(t, func(string) tracker.Store { return noopStore{} })

	require.True(t, tr.Start(status.update))
	tr.Tick()
	assert.Empty(t, buf.String(), "no output while still tracking")

	require.True(t, tr.Pause())
	assert.Contains(t, buf.String(), "Paused")
	assert.Contains(t, buf.String(), "1m 0s")

	tr.Continue()
	tr.Tick()
	assert.Contains(t, buf.String(), "Tracking")

	require.True(t, tr.Stop())
	assert.Contains(t, buf.String(), "Stopped")
}

type noopStore struct{}

func (noopStore) AddSession(model.Session) error { return nil }
func (noopStore) RecomputeTotalTime() error      { return nil }
