// Package sched provides cancellable one-shot timers whose callbacks run on
// the program's single event loop rather than on a timer goroutine.
package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented the
	// callback from running. Stopping an already stopped or fired timer is a
	// no-op.
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Fired is posted to the event loop when a Loop timer expires. The loop owner
// must call Run from its update function.
type Fired struct {
	t *loopTimer
}

// Run invokes the callback unless the timer was stopped after it expired but
// before the message reached the loop.
func (m Fired) Run() {
	if m.t == nil || !m.t.done.CompareAndSwap(false, true) {
		return
	}
	m.t.f()
}

// Loop is a Scheduler that hands expired timers back to an event loop through
// a post function, typically (*tea.Program).Send.
type Loop struct {
	mu   sync.RWMutex
	post func(any)
}

// NewLoop returns a Loop that is not yet bound to an event loop. Timers that
// expire before Bind is called are dropped.
func NewLoop() *Loop {
	return &Loop{}
}

// Bind sets the function used to deliver Fired messages.
func (l *Loop) Bind(post func(any)) {
	l.mu.Lock()
	l.post = post
	l.mu.Unlock()
}

func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{f: f}
	t.rt = time.AfterFunc(d, func() {
		l.mu.RLock()
		post := l.post
		l.mu.RUnlock()
		if post != nil {
			post(Fired{t: t})
		}
	})
	return t
}

type loopTimer struct {
	rt   *time.Timer
	f    func()
	done atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.rt.Stop()
	return t.done.CompareAndSwap(false, true)
}
