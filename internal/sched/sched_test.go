package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeRunsCallbacksInDueOrder(t *testing.T) {
	f := NewFake()
	var got []string
	f.AfterFunc(20*time.Millisecond, func() { got = append(got, "b") })
	f.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	f.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })

	f.Advance(25 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, f.Pending())

	f.Advance(5 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Zero(t, f.Pending())
}

func TestFakeStopPreventsCallback(t *testing.T) {
	f := NewFake()
	ran := false
	timer := f.AfterFunc(time.Second, func() { ran = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	f.Advance(2 * time.Second)
	assert.False(t, ran)
	assert.Zero(t, f.Pending())
}

func TestFakeRunsTimersScheduledDuringAdvance(t *testing.T) {
	f := NewFake()
	count := 0
	var tick func()
	tick = func() {
		count++
		f.AfterFunc(10*time.Millisecond, tick)
	}
	f.AfterFunc(10*time.Millisecond, tick)

	f.Advance(55 * time.Millisecond)
	assert.Equal(t, 5, count)
	assert.Equal(t, 1, f.Pending())
}

func TestLoopDeliversFiredOnPost(t *testing.T) {
	l := NewLoop()
	posted := make(chan any, 1)
	l.Bind(func(msg any) { posted <- msg })

	ran := false
	l.AfterFunc(time.Millisecond, func() { ran = true })

	var msg any
	select {
	case msg = <-posted:
	case <-time.After(time.Second):
		t.Fatal("timer never posted")
	}
	fired, ok := msg.(Fired)
	require.True(t, ok)
	assert.False(t, ran, "callback must wait for the loop")
	fired.Run()
	assert.True(t, ran)
}

func TestLoopStopDropsQueuedFired(t *testing.T) {
	l := NewLoop()
	posted := make(chan any, 1)
	l.Bind(func(msg any) { posted <- msg })

	ran := false
	timer := l.AfterFunc(time.Millisecond, func() { ran = true })

	msg := <-posted
	assert.True(t, timer.Stop(), "stop after expiry but before Run still cancels")
	msg.(Fired).Run()
	assert.False(t, ran)
}
