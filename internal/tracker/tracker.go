// Package tracker measures active working time in a project. A Tracker
// opens a session when tracking starts, closes it on pause or stop, and
// pauses on its own once the idle counter exceeds the configured limit.
package tracker

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/Tiliavir/project-time-tracker/internal/model"
	"github.com/Tiliavir/project-time-tracker/internal/timecalc"
)

// Action is called with the tracker on every tick and after every
// completed pause or stop.
type Action func(*Tracker)

// Store persists closed sessions.
type Store interface {
	AddSession(model.Session) error
	RecomputeTotalTime() error
}

// StoreFactory builds a Store for a resolved tracking file path.
type StoreFactory func(path string) Store

// RootResolver reports the current project root. ok is false when no
// project is open.
type RootResolver func() (root string, ok bool)

// Options configures a Tracker.
type Options struct {
	DataFileName string
	Subpath      string
	// MaxIdle is the idle limit in seconds. Zero disables auto-pause.
	MaxIdle      int
	TickInterval time.Duration
	Clock        clock.Clock
	Logger       *zerolog.Logger
}

// Tracker is the session/idle state machine.
type Tracker struct {
	mu sync.Mutex

	phase   phase
	idle    int
	maxIdle int
	action  Action

	store    Store
	resolve  RootResolver
	newStore StoreFactory

	dataFileName string
	subpath      string
	interval     time.Duration
	clock        clock.Clock
	log          zerolog.Logger
}

// New creates a stopped tracker. If a project root is available the store
// is created right away.
func New(resolve RootResolver, newStore StoreFactory, opts Options) *Tracker {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	t := &Tracker{
		phase:        stopped{},
		maxIdle:      max(opts.MaxIdle, 0),
		resolve:      resolve,
		newStore:     newStore,
		dataFileName: normalizeDataFileName(opts.DataFileName),
		subpath:      NormalizeSubpath(opts.Subpath),
		interval:     opts.TickInterval,
		clock:        opts.Clock,
		log:          log,
	}
	t.mu.Lock()
	t.openStoreLocked()
	t.mu.Unlock()
	return t
}

// Start opens a new session and starts the tick timer. It returns false if
// a session is already active or no project root is available.
func (t *Tracker) Start(action Action) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.phase.(*started); ok {
		t.log.Info().Msg("another tracking session is already active")
		return false
	}
	path, ok := t.pathLocked()
	if !ok {
		t.log.Debug().Msg("no project root, not starting")
		return false
	}
	if t.store == nil {
		t.store = t.newStore(path)
	}

	t.action = action
	t.openSessionLocked()
	t.log.Info().Str("path", path).Msg("tracking started")
	return true
}

// Pause closes and persists the open session. It returns false if no
// session is active.
func (t *Tracker) Pause() bool {
	return t.close(paused{})
}

// Continue resumes tracking with a new session. It always succeeds; when
// tracking is already started the open session is kept.
func (t *Tracker) Continue() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.phase.(*started); ok {
		return true
	}
	if t.store == nil {
		t.openStoreLocked()
	}
	t.openSessionLocked()
	t.log.Info().Msg("tracking continued")
	return true
}

// Stop closes and persists the open session and stops tracking. It returns
// false if no session is active.
func (t *Tracker) Stop() bool {
	return t.close(stopped{})
}

// ResetIdleTime sets the idle counter back to zero.
func (t *Tracker) ResetIdleTime() {
	t.mu.Lock()
	t.idle = 0
	t.mu.Unlock()
}

// Recompute asks the store to recompute the tracked total.
func (t *Tracker) Recompute() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.store == nil {
		return true
	}
	if err := t.store.RecomputeTotalTime(); err != nil {
		t.log.Error().Err(err).Msg("failed to recompute total time")
	}
	return true
}

// Tick runs one step of idle tracking. It is a no-op unless tracking is
// started.
func (t *Tracker) Tick() {
	t.tick(nil)
}

// tick runs a step on behalf of owner. Ticks from a timer that no longer
// belongs to the started phase are dropped; a nil owner means the current
// timer.
func (t *Tracker) tick(owner *tickTimer) {
	t.mu.Lock()
	if !t.ownsLocked(owner) {
		t.mu.Unlock()
		return
	}
	action := t.action
	t.mu.Unlock()

	if action != nil {
		action(t)
	}

	t.mu.Lock()
	if !t.ownsLocked(owner) {
		t.mu.Unlock()
		return
	}
	if t.maxIdle > 0 {
		t.idle++
	}
	if t.idle <= t.maxIdle {
		t.mu.Unlock()
		return
	}
	t.log.Info().Int("idle", t.idle).Int("max_idle", t.maxIdle).Msg("idle limit exceeded, pausing")
	notify := t.closeLocked(paused{})
	t.mu.Unlock()

	if notify != nil {
		notify(t)
	}
}

// SetSubpath changes the project-relative directory of the tracking file.
// Tracking is reset to stopped and an open session is discarded without
// being persisted.
func (t *Tracker) SetSubpath(subpath string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.subpath = NormalizeSubpath(subpath)
	t.reconfigureLocked()
}

// SetDataFileName changes the tracking file name. A blank name selects
// DefaultDataFileName. Like SetSubpath it discards an open session.
func (t *Tracker) SetDataFileName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dataFileName = normalizeDataFileName(name)
	t.reconfigureLocked()
}

// SetMaxIdle sets the idle limit in seconds. Zero disables auto-pause.
func (t *Tracker) SetMaxIdle(seconds int) {
	t.mu.Lock()
	t.maxIdle = max(seconds, 0)
	t.mu.Unlock()
}

// State returns the current tracking state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase.state()
}

// IdleTime returns the idle counter in seconds.
func (t *Tracker) IdleTime() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idle
}

// MaxIdle returns the idle limit in seconds.
func (t *Tracker) MaxIdle() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxIdle
}

// CurrentSession returns the open session, if tracking is started.
func (t *Tracker) CurrentSession() (model.Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.phase.(*started); ok {
		return s.session, true
	}
	return model.Session{}, false
}

// TrackingFilePath returns the tracking file location, or false when no
// project root is available.
func (t *Tracker) TrackingFilePath() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pathLocked()
}

// DataFileName returns the configured tracking file name.
func (t *Tracker) DataFileName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dataFileName
}

// Subpath returns the normalized subpath, empty if none.
func (t *Tracker) Subpath() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.subpath
}

func (t *Tracker) close(next phase) bool {
	t.mu.Lock()
	if _, ok := t.phase.(*started); !ok {
		t.mu.Unlock()
		t.log.Info().Msg("no tracking session is active")
		return false
	}
	notify := t.closeLocked(next)
	t.mu.Unlock()

	if notify != nil {
		notify(t)
	}
	return true
}

// closeLocked ends the started phase and returns the subscriber to notify.
func (t *Tracker) closeLocked(next phase) Action {
	s := t.phase.(*started)
	s.timer.stop()

	session := s.session.Close(t.clock.Now())
	t.persistLocked(session)

	t.phase = next
	t.idle = 0
	t.log.Info().
		Str("state", next.state().String()).
		Int64("duration_seconds", session.DurationSeconds()).
		Msg("session closed")
	return t.action
}

func (t *Tracker) persistLocked(session model.Session) {
	if t.store == nil {
		t.log.Warn().Str("session", session.ID).Msg("no store configured, session not saved")
		return
	}
	if err := t.store.AddSession(session); err != nil {
		t.log.Error().Err(err).Str("session", session.ID).Msg("failed to save session")
	}
}

func (t *Tracker) openSessionLocked() {
	now := t.clock.Now()
	s := &started{session: model.NewSession(timecalc.GenerateID(now), now)}
	s.timer = startTickTimer(t.clock, t.interval, t.tick)
	t.phase = s
	t.idle = 0
}

func (t *Tracker) reconfigureLocked() {
	if s, ok := t.phase.(*started); ok {
		s.timer.stop()
		t.log.Warn().
			Str("session", s.session.ID).
			Time("start", s.session.Start).
			Msg("tracking reconfigured, discarding open session")
	}
	t.phase = stopped{}
	t.idle = 0
	t.openStoreLocked()
}

func (t *Tracker) openStoreLocked() {
	if path, ok := t.pathLocked(); ok {
		t.store = t.newStore(path)
	}
}

func (t *Tracker) ownsLocked(owner *tickTimer) bool {
	s, ok := t.phase.(*started)
	return ok && (owner == nil || s.timer == owner)
}

func (t *Tracker) pathLocked() (string, bool) {
	if t.resolve == nil {
		return "", false
	}
	root, ok := t.resolve()
	if !ok || root == "" {
		return "", false
	}
	return trackingFilePath(root, t.subpath, t.dataFileName), true
}
