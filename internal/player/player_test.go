package player

import (
	"encoding/binary"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/olivier-w/bucketbox/internal/catalog"
)

// drainOutput reads its source to the end as soon as Play is called.
type drainOutput struct {
	r io.Reader

	mu      sync.Mutex
	playing bool
	paused  bool
	read    int64
}

func newDrainOutput(r io.Reader, _ float64) (output, error) {
	return &drainOutput{r: r}, nil
}

func (o *drainOutput) Play() {
	o.mu.Lock()
	o.playing = true
	o.mu.Unlock()
	go func() {
		n, _ := io.Copy(io.Discard, o.r)
		o.mu.Lock()
		o.read = n
		o.playing = false
		o.mu.Unlock()
	}()
}

func (o *drainOutput) Pause() {
	o.mu.Lock()
	o.paused = true
	o.mu.Unlock()
}

func (o *drainOutput) IsPlaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playing
}

func encodeWAV(t *testing.T, rate, channels int, data []int) []byte {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "*.wav")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	b, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	return b
}

func serveBytes(t *testing.T, b []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(b)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDeck(t *testing.T) (*Deck, chan Event) {
	t.Helper()
	events := make(chan Event, 8)
	d := NewDeck(func(ev Event) { events <- ev }, Options{newOutput: newDrainOutput})
	t.Cleanup(d.Close)
	return d, events
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestDeckPlaysWAVToEnd(t *testing.T) {
	samples := make([]int, 2*4410)
	for i := range samples {
		samples[i] = (i % 200) * 100
	}
	srv := serveBytes(t, encodeWAV(t, sampleRate, 2, samples))
	d, events := newTestDeck(t)

	id := catalog.TrackID("set/tone.wav")
	if err := d.Start(id, srv.URL+"/tone.wav", 7); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ev := nextEvent(t, events)
	if ev.Kind != Ready || ev.ID != id || ev.Gen != 7 {
		t.Fatalf("expected ready for gen 7, got %+v", ev)
	}
	if _, ok := d.Source(id); !ok {
		t.Fatalf("expected a source once ready")
	}

	ev = nextEvent(t, events)
	if ev.Kind != Ended || ev.Gen != 7 {
		t.Fatalf("expected ended for gen 7, got %+v", ev)
	}
	if got, want := d.Position(id), 100*time.Millisecond; got != want {
		t.Fatalf("expected position %v, got %v", want, got)
	}
}

func TestDeckReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	d, events := newTestDeck(t)

	if err := d.Start("missing.mp3", srv.URL+"/missing.mp3", 3); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ev := nextEvent(t, events)
	if ev.Kind != Failed || ev.Gen != 3 || ev.Err == nil {
		t.Fatalf("expected failure with error, got %+v", ev)
	}
}

func TestDeckReportsUnsupportedRate(t *testing.T) {
	srv := serveBytes(t, encodeWAV(t, 22050, 2, make([]int, 200)))
	d, events := newTestDeck(t)

	if err := d.Start("low.wav", srv.URL, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ev := nextEvent(t, events)
	if ev.Kind != Failed || !errors.Is(ev.Err, ErrUnsupportedRate) {
		t.Fatalf("expected unsupported rate failure, got %+v", ev)
	}
}

func TestDeckRejectsUnsupportedFormat(t *testing.T) {
	d, _ := newTestDeck(t)
	err := d.Start("podcast.m4a", "http://127.0.0.1/podcast.m4a", 1)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDeckStopSuppressesEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	d, events := newTestDeck(t)

	id := catalog.TrackID("slow.mp3")
	if err := d.Start(id, srv.URL, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.mu.Lock()
	s := d.streams[id]
	d.mu.Unlock()

	d.Stop(id)
	s.wait()

	select {
	case ev := <-events:
		t.Fatalf("expected no event after stop, got %+v", ev)
	default:
	}
	if _, ok := d.Source(id); ok {
		t.Fatalf("expected no source after stop")
	}
	d.Stop(id) // unknown ids are ignored
}

func TestDeckStartAfterCloseFails(t *testing.T) {
	d, _ := newTestDeck(t)
	d.Close()
	if err := d.Start("a.mp3", "http://127.0.0.1/a.mp3", 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestWAVDecoderUpmixesMono(t *testing.T) {
	data := encodeWAV(t, sampleRate, 1, []int{1000, -1000, 32767})
	dec, err := newDecoder(".wav", bytesReader(data))
	if err != nil {
		t.Fatalf("newDecoder: %v", err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(pcm) != 3*4 {
		t.Fatalf("expected 3 stereo frames, got %d bytes", len(pcm))
	}
	want := []int16{1000, 1000, -1000, -1000, 32767, 32767}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(pcm[i*2:])); got != w {
			t.Fatalf("sample %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestNewDecoderRejectsUnknownExtension(t *testing.T) {
	_, err := newDecoder(".aac", bytesReader(nil))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
