package tracker

import "github.com/Tiliavir/project-time-tracker/internal/model"

// State is the tracking mode of a Tracker.
type State int

const (
	Stopped State = iota
	Started
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Started:
		return "started"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// phase carries the data that only exists in a given State. The open
// session and the tick timer live in started and nowhere else.
type phase interface {
	state() State
}

type stopped struct{}

func (stopped) state() State { return Stopped }

type paused struct{}

func (paused) state() State { return Paused }

type started struct {
	session model.Session
	timer   *tickTimer
}

func (*started) state() State { return Started }
