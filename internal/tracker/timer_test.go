package tracker

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerDrivesIdlePause(t *testing.T) {
	mock := clock.NewMock()
	store := &fakeStore{}
	root := t.TempDir()
	tr := New(
		func() (string, bool) { return root, true },
		func(string) Store { return store },
		Options{MaxIdle: 3, TickInterval: time.Second, Clock: mock},
	)
	t.Cleanup(func() { tr.Stop() })

	ticked := make(chan struct{}, 16)
	require.True(t, tr.Start(func(*Tracker) { ticked <- struct{}{} }))

	for i := 1; i <= 3; i++ {
		mock.Add(time.Second)
		waitTick(t, ticked)
		require.Eventually(t, func() bool { return tr.IdleTime() == i }, time.Second, time.Millisecond)
	}

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return tr.State() == Paused }, time.Second, time.Millisecond)

	saved := store.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, int64(4), saved[0].DurationSeconds())

	// The cancelled timer must not tick again.
	drain(ticked)
	mock.Add(5 * time.Second)
	assert.Never(t, func() bool { return len(ticked) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Len(t, store.saved(), 1)
}

func TestStaleTimerTickIgnored(t *testing.T) {
	h := newHarness(t, 1)
	require.True(t, h.tracker.Start(nil))
	s := h.tracker.phase.(*started)
	stale := s.timer

	require.True(t, h.tracker.Pause())
	require.True(t, h.tracker.Continue())

	h.tracker.tick(stale)
	h.tracker.tick(stale)
	assert.Equal(t, Started, h.tracker.State())
	assert.Equal(t, 0, h.tracker.IdleTime())
}

func waitTick(t *testing.T, ticked <-chan struct{}) {
	t.Helper()
	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tick")
	}
}

func drain(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
