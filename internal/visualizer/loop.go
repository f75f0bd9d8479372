package visualizer

import (
	"time"

	"github.com/olivier-w/bucketbox/internal/sched"
)

// frameLoop calls fn every interval until stopped. Each tick schedules the
// next one, so at most one callback is pending at a time.
type frameLoop struct {
	sched    sched.Scheduler
	interval time.Duration
	fn       func()
	timer    sched.Timer
	stopped  bool
}

func startFrameLoop(s sched.Scheduler, interval time.Duration, fn func()) *frameLoop {
	l := &frameLoop{sched: s, interval: interval, fn: fn}
	l.schedule()
	return l
}

func (l *frameLoop) schedule() {
	l.timer = l.sched.AfterFunc(l.interval, l.tick)
}

func (l *frameLoop) tick() {
	l.timer = nil
	if l.stopped {
		return
	}
	l.fn()
	if !l.stopped {
		l.schedule()
	}
}

// stop cancels the pending tick. Calling it again is a no-op.
func (l *frameLoop) stop() {
	if l.stopped {
		return
	}
	l.stopped = true
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}
