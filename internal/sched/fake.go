package sched

import (
	"sort"
	"time"
)

// Fake is a manually advanced Scheduler for tests. Callbacks run
// synchronously inside Advance, in due order.
type Fake struct {
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

// NewFake returns a Fake at time zero.
func NewFake() *Fake {
	return &Fake{}
}

type fakeTimer struct {
	fake *Fake
	due  time.Duration
	seq  int
	f    func()
	done bool
}

func (t *fakeTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.fake.remove(t)
	return true
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.seq++
	t := &fakeTimer{fake: f, due: f.now + d, seq: f.seq, f: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward by d and runs every callback that becomes
// due, including ones scheduled by callbacks during the advance.
func (f *Fake) Advance(d time.Duration) {
	end := f.now + d
	for {
		t := f.next()
		if t == nil || t.due > end {
			break
		}
		f.now = t.due
		t.done = true
		f.remove(t)
		t.f()
	}
	f.now = end
}

// Now returns the elapsed fake time.
func (f *Fake) Now() time.Duration {
	return f.now
}

// Pending returns the number of callbacks that have neither run nor been
// stopped.
func (f *Fake) Pending() int {
	return len(f.timers)
}

func (f *Fake) next() *fakeTimer {
	if len(f.timers) == 0 {
		return nil
	}
	sort.SliceStable(f.timers, func(i, j int) bool {
		if f.timers[i].due == f.timers[j].due {
			return f.timers[i].seq < f.timers[j].seq
		}
		return f.timers[i].due < f.timers[j].due
	})
	return f.timers[0]
}

func (f *Fake) remove(t *fakeTimer) {
	for i, o := range f.timers {
		if o == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return
		}
	}
}
