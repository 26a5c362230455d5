package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Tiliavir/project-time-tracker/internal/config"
	"github.com/Tiliavir/project-time-tracker/internal/model"
	"github.com/Tiliavir/project-time-tracker/internal/timecalc"
	"github.com/Tiliavir/project-time-tracker/internal/tracker"
)

var (
	watchMaxIdle  int
	watchNoReload bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Track time in the project until interrupted",
	Long: `Starts a tracking session in the project and keeps it open while you work.

Every line read from stdin counts as activity; pipe an editor or file
watcher into it, or press Enter. After max_idle_seconds without activity
the session is closed and tracking pauses until the next activity.
Ctrl+C, SIGTERM or the end of stdin stop tracking and save the session.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchMaxIdle, "max-idle", 0, "Idle seconds before pausing (overrides config, 0 disables)")
	watchCmd.Flags().BoolVar(&watchNoReload, "no-reload", false, "Do not apply config file changes while running")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var active atomic.Int64
	tr := newTracker(func(path string) tracker.Store {
		return countingStore{Store: newStore(path), seconds: &active}
	})
	if cmd.Flags().Changed("max-idle") {
		tr.SetMaxIdle(watchMaxIdle)
	}

	status := newStatusLine(os.Stdout, isatty.IsTerminal(os.Stdout.Fd()))
	if !tr.Start(status.update) {
		if _, ok := tr.TrackingFilePath(); !ok {
			fmt.Fprintln(os.Stderr, "No project folder found; open a folder to track time.")
		} else {
			fmt.Fprintln(os.Stderr, "Another time tracking session is already active.")
		}
		os.Exit(1)
	}
	path, _ := tr.TrackingFilePath()
	fmt.Println(field("Tracking", path))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return pumpActivity(gctx, tr, readLines(gctx, os.Stdin), status.update)
	})

	if !watchNoReload {
		changes := make(chan config.Config, 1)
		err := config.Watch(configFile, func(c config.Config, err error) {
			if err != nil {
				logger.Warn().Err(err).Str("path", configFile).Msg("ignoring invalid config change")
				return
			}
			select {
			case changes <- c:
			default:
			}
		})
		if err != nil {
			logger.Warn().Err(err).Msg("config reload disabled")
		} else {
			g.Go(func() error { return applyConfigChanges(gctx, tr, changes) })
		}
	}

	err := g.Wait()
	tr.Stop()
	status.finish()

	fmt.Printf("Stopped tracking. Active time: %s\n", formatElapsed(active.Load()))
	return err
}

// readLines delivers one value per line of r. The channel is closed at EOF.
func readLines(ctx context.Context, r io.Reader) <-chan struct{} {
	lines := make(chan struct{})
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// pumpActivity turns activity signals into tracker calls until ctx is done
// or activity ends.
func pumpActivity(ctx context.Context, tr *tracker.Tracker, activity <-chan struct{}, action tracker.Action) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-activity:
			if !ok {
				return nil
			}
			onActivity(tr, action)
		}
	}
}

func onActivity(tr *tracker.Tracker, action tracker.Action) {
	switch tr.State() {
	case tracker.Started:
		tr.ResetIdleTime()
	case tracker.Paused:
		tr.Continue()
		logger.Info().Msg("activity detected, continuing")
	case tracker.Stopped:
		// Reconfiguration resets tracking; activity starts it again.
		tr.Start(action)
	}
}

func applyConfigChanges(ctx context.Context, tr *tracker.Tracker, changes <-chan config.Config) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-changes:
			applyConfig(tr, c)
		}
	}
}

// applyConfig updates only the settings that changed so an unrelated edit
// does not reset an open session.
func applyConfig(tr *tracker.Tracker, c config.Config) {
	if c.Tracking.MaxIdleSeconds != tr.MaxIdle() {
		tr.SetMaxIdle(c.Tracking.MaxIdleSeconds)
		logger.Info().Int("max_idle", c.Tracking.MaxIdleSeconds).Msg("idle limit updated")
	}
	if tracker.NormalizeSubpath(c.Tracking.Subpath) != tr.Subpath() {
		tr.SetSubpath(c.Tracking.Subpath)
	}
	name := strings.TrimSpace(c.Tracking.DataFileName)
	if name == "" {
		name = tracker.DefaultDataFileName
	}
	if name != tr.DataFileName() {
		tr.SetDataFileName(name)
	}
}

// countingStore sums the durations of the sessions it saves.
type countingStore struct {
	tracker.Store
	seconds *atomic.Int64
}

func (c countingStore) AddSession(s model.Session) error {
	if err := c.Store.AddSession(s); err != nil {
		return err
	}
	c.seconds.Add(s.DurationSeconds())
	return nil
}

// statusLine renders tracker state. On a terminal the elapsed time of the
// open session is redrawn every tick; otherwise only transitions print.
type statusLine struct {
	mu    sync.Mutex
	out   io.Writer
	tty   bool
	last  tracker.State
	dirty bool
}

func newStatusLine(out io.Writer, tty bool) *statusLine {
	return &statusLine{out: out, tty: tty, last: tracker.Started}
}

func (s *statusLine) update(tr *tracker.Tracker) {
	state := tr.State()
	session, open := tr.CurrentSession()
	idle, maxIdle := tr.IdleTime(), tr.MaxIdle()

	s.mu.Lock()
	defer s.mu.Unlock()

	if state != s.last {
		s.clearLocked()
		switch state {
		case tracker.Started:
			if !s.tty {
				fmt.Fprintln(s.out, styles.Running.Render("Tracking"))
			}
		case tracker.Paused:
			fmt.Fprintln(s.out, styles.Paused.Render("Paused")+" after "+formatElapsed(int64(maxIdle))+" idle, waiting for activity")
		case tracker.Stopped:
			fmt.Fprintln(s.out, styles.Stopped.Render("Stopped"))
		}
		s.last = state
	}
	if s.tty && open {
		elapsed := int64(time.Since(session.Start).Seconds())
		fmt.Fprintf(s.out, "\r%s %s  idle %ds ", styles.Running.Render("●"),
			timecalc.FormatDurationHHMMSS(elapsed), idle)
		s.dirty = true
	}
}

func (s *statusLine) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *statusLine) clearLocked() {
	if s.dirty {
		fmt.Fprintln(s.out)
		s.dirty = false
	}
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
