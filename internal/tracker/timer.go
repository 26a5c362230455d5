package tracker

import (
	"time"

	"github.com/benbjohnson/clock"
)

// tickTimer is a cancellable repeating task. A tick already in flight when
// stop is called is allowed to finish.
type tickTimer struct {
	ticker *clock.Ticker
	done   chan struct{}
}

func startTickTimer(clk clock.Clock, interval time.Duration, fn func(*tickTimer)) *tickTimer {
	tt := &tickTimer{
		ticker: clk.Ticker(interval),
		done:   make(chan struct{}),
	}
	go tt.run(fn)
	return tt
}

func (tt *tickTimer) run(fn func(*tickTimer)) {
	for {
		select {
		case <-tt.done:
			return
		case <-tt.ticker.C:
			fn(tt)
		}
	}
}

// stop must be called exactly once.
func (tt *tickTimer) stop() {
	tt.ticker.Stop()
	close(tt.done)
}
