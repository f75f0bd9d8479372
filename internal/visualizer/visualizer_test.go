package visualizer

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/olivier-w/bucketbox/internal/catalog"
	"github.com/olivier-w/bucketbox/internal/sched"
)

type fakeSource struct {
	mu   sync.Mutex
	subs map[int]func([]int16)
	next int
}

func newFakeSource() *fakeSource {
	return &fakeSource{subs: map[int]func([]int16){}}
}

func (s *fakeSource) Subscribe(fn func([]int16)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *fakeSource) emit(samples []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fn := range s.subs {
		fn(samples)
	}
}

func (s *fakeSource) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

type fakeSources map[catalog.TrackID]*fakeSource

func (f fakeSources) Source(id catalog.TrackID) (Source, bool) {
	s, ok := f[id]
	if !ok {
		return nil, false
	}
	return s, true
}

// tone returns interleaved stereo samples of a sine wave.
func tone(freq, amp float64, frames int) []int16 {
	out := make([]int16, frames*2)
	for i := range frames {
		v := int16(amp * 32767 * math.Sin(2*math.Pi*freq*float64(i)/44100))
		out[2*i] = v
		out[2*i+1] = v
	}
	return out
}

func TestAttachThenDetachLeavesNoPendingFrames(t *testing.T) {
	src := newFakeSource()
	f := sched.NewFake()
	e := NewEngine(fakeSources{"a": src}, f, Options{}, nil)

	if err := e.Attach("a"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if f.Pending() != 1 || src.subscribers() != 1 {
		t.Fatalf("expected one frame and one subscriber, got %d and %d", f.Pending(), src.subscribers())
	}

	e.Detach("a")
	if f.Pending() != 0 || src.subscribers() != 0 || e.Active() != 0 {
		t.Fatalf("expected nothing left after detach, got %d frames, %d subscribers, %d sessions",
			f.Pending(), src.subscribers(), e.Active())
	}

	e.Detach("a")
	if f.Pending() != 0 {
		t.Fatalf("expected second detach to be a no-op")
	}
}

func TestSilenceGivesNeutralColor(t *testing.T) {
	s := newSession(Options{}.withDefaults())
	if got := s.SampleColor(); got != (Color{R: 129, G: 129, B: 129}) {
		t.Fatalf("expected rgb(129, 129, 129) before any signal, got %v", got)
	}

	s.Write(make([]int16, 4096))
	if got := s.SampleColor(); got != Neutral {
		t.Fatalf("expected neutral for digital silence, got %v", got)
	}
}

func TestLowToneDrivesLowChannel(t *testing.T) {
	s := newSession(Options{}.withDefaults())
	s.Write(tone(60, 0.8, 4096))

	c := s.SampleColor()
	if c.R != 255 {
		t.Fatalf("expected a loud bass tone to saturate the low band, got %v", c)
	}
	if c.G >= c.R {
		t.Fatalf("expected high band below low band, got %v", c)
	}
	if want := uint8((float64(c.R) + float64(c.G)) / 2); c.B != want {
		t.Fatalf("expected blue to average the bands (%d), got %v", want, c)
	}
}

func TestHighToneDrivesHighChannel(t *testing.T) {
	s := newSession(Options{}.withDefaults())
	s.Write(tone(8000, 0.8, 4096))

	c := s.SampleColor()
	if c.G != 255 || c.R >= c.G {
		t.Fatalf("expected a treble tone to saturate only the high band, got %v", c)
	}
}

func TestFrameLoopEmitsUntilDetached(t *testing.T) {
	src := newFakeSource()
	f := sched.NewFake()
	var frames []Color
	e := NewEngine(fakeSources{"a": src}, f, Options{FPS: 50}, func(id catalog.TrackID, c Color) {
		if id != "a" {
			t.Fatalf("unexpected track %q", id)
		}
		frames = append(frames, c)
	})

	if err := e.Attach("a"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	f.Advance(100 * time.Millisecond)
	if len(frames) != 5 {
		t.Fatalf("expected 5 frames at 50fps over 100ms, got %d", len(frames))
	}
	if frames[0] != Neutral {
		t.Fatalf("expected first frame neutral, got %v", frames[0])
	}

	src.emit(tone(60, 0.8, 2048))
	f.Advance(20 * time.Millisecond)
	if last := frames[len(frames)-1]; last == Neutral {
		t.Fatal("expected the tone to color the next frame")
	}

	e.Detach("a")
	n := len(frames)
	f.Advance(time.Second)
	if len(frames) != n {
		t.Fatalf("expected no frames after detach, got %d more", len(frames)-n)
	}
}

func TestAttachIsIdempotentPerTrack(t *testing.T) {
	src := newFakeSource()
	f := sched.NewFake()
	e := NewEngine(fakeSources{"a": src}, f, Options{}, nil)

	for range 2 {
		if err := e.Attach("a"); err != nil {
			t.Fatalf("Attach: %v", err)
		}
	}
	if src.subscribers() != 1 || f.Pending() != 1 {
		t.Fatalf("expected one subscriber and one frame, got %d and %d", src.subscribers(), f.Pending())
	}
}

func TestAttachWithoutSource(t *testing.T) {
	e := NewEngine(fakeSources{}, sched.NewFake(), Options{}, nil)
	if err := e.Attach("missing"); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
	if e.Active() != 0 {
		t.Fatal("expected no session")
	}
}

func TestCloseDetachesEverything(t *testing.T) {
	f := sched.NewFake()
	e := NewEngine(fakeSources{"a": newFakeSource(), "b": newFakeSource()}, f, Options{}, nil)
	for _, id := range []catalog.TrackID{"a", "b"} {
		if err := e.Attach(id); err != nil {
			t.Fatalf("Attach %s: %v", id, err)
		}
	}

	e.Close()
	if e.Active() != 0 || f.Pending() != 0 {
		t.Fatalf("expected nothing left, got %d sessions and %d frames", e.Active(), f.Pending())
	}
}

func TestWriteAfterCloseIsIgnored(t *testing.T) {
	s := newSession(Options{}.withDefaults())
	s.close()
	s.Write(tone(60, 0.8, 1024))
	if got := s.SampleColor(); got != Neutral {
		t.Fatalf("expected neutral after close, got %v", got)
	}
}

func TestWithDefaultsKeepsZeroResonance(t *testing.T) {
	o := Options{}.withDefaults()
	if o.QDB != 0 {
		t.Fatalf("expected 0 dB to be kept, got %v", o.QDB)
	}
	if o.FPS != 60 || o.FFTSize != DefaultFFTSize || o.SampleRate != 44100 || o.CutoffHz != 350 {
		t.Fatalf("unexpected defaults %+v", o)
	}
	if o := (Options{QDB: 6}).withDefaults(); o.QDB != 6 {
		t.Fatalf("expected explicit resonance kept, got %v", o.QDB)
	}
}

func TestBandLevelCurve(t *testing.T) {
	cases := []struct {
		peak byte
		want float64
	}{
		{128, 129},
		{138, 128 + math.E},
		{255, 255},
	}
	for _, c := range cases {
		if got := bandLevel(c.peak); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("bandLevel(%d) = %v, want %v", c.peak, got, c.want)
		}
	}
	if got := bandLevel(100); got >= 129 {
		t.Fatalf("expected a negative swing below the midpoint level, got %v", got)
	}
	if Neutral.Hex() != "#818181" || Neutral.String() != "rgb(129, 129, 129)" {
		t.Fatalf("unexpected neutral formatting %s %s", Neutral.Hex(), Neutral)
	}
}
