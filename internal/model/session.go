package model

import "time"

// Session represents one contiguous span of active tracking.
type Session struct {
	ID      string     `json:"id"`
	Start   time.Time  `json:"start"`
	End     *time.Time `json:"end"`
	Running bool       `json:"running"`
}

// NewSession opens a session starting at now.
func NewSession(id string, now time.Time) Session {
	return Session{
		ID:      id,
		Start:   now,
		Running: true,
	}
}

// Close returns a copy of s ended at now. An end before the start is
// clamped to the start so that Start <= End always holds.
func (s Session) Close(now time.Time) Session {
	if now.Before(s.Start) {
		now = s.Start
	}
	end := now
	s.End = &end
	s.Running = false
	return s
}

// Open reports whether the session has not been closed yet.
func (s Session) Open() bool {
	return s.End == nil
}

// DurationSeconds returns the length of a closed session in whole seconds.
// Open sessions report zero.
func (s Session) DurationSeconds() int64 {
	if s.End == nil {
		return 0
	}
	return int64(s.End.Sub(s.Start).Seconds())
}

// DataFile is the top-level structure stored in a project's tracking file.
type DataFile struct {
	Sessions     []Session `json:"sessions"`
	TotalSeconds int64     `json:"total_seconds"`
}
