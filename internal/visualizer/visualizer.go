// Package visualizer turns a playing track's decoded signal into a display
// color once per animation frame.
package visualizer

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/olivier-w/bucketbox/internal/catalog"
	"github.com/olivier-w/bucketbox/internal/sched"
	zlog "github.com/rs/zerolog/log"
)

// Source is the decoded signal of one transport.
type Source interface {
	// Subscribe registers fn for every chunk of interleaved stereo samples.
	// No call to fn may start after the returned function returns.
	Subscribe(fn func(samples []int16)) (unsubscribe func())
}

// Sources looks up the signal of a track's running transport.
type Sources interface {
	Source(id catalog.TrackID) (Source, bool)
}

// ErrNoSource is returned by Attach when the track has no running transport.
var ErrNoSource = errors.New("visualizer: no signal for track")

// Options configures the filters, analysers and frame rate. Zero fields take
// their defaults, except QDB: 0 dB is a valid resonance.
type Options struct {
	FPS        int     `yaml:"fps" default:"60" validate:"gte=1,lte=240"`
	FFTSize    int     `yaml:"fft_size" default:"2048" validate:"oneof=256 512 1024 2048 4096 8192"`
	SampleRate float64 `yaml:"-" default:"44100"`
	CutoffHz   float64 `yaml:"cutoff_hz" default:"350" validate:"gt=0"`
	QDB        float64 `yaml:"q" default:"1"`
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = 60
	}
	if o.FFTSize <= 0 {
		o.FFTSize = DefaultFFTSize
	}
	if o.SampleRate <= 0 {
		o.SampleRate = 44100
	}
	if o.CutoffHz <= 0 {
		o.CutoffHz = 350
	}
	return o
}

// Engine owns one Session per visualized track. It must be used from the
// event loop that runs the scheduler's callbacks.
type Engine struct {
	sources  Sources
	sched    sched.Scheduler
	opts     Options
	sink     func(catalog.TrackID, Color)
	sessions map[catalog.TrackID]*Session
}

// NewEngine creates an engine. sink receives every frame's color.
func NewEngine(src Sources, s sched.Scheduler, opts Options, sink func(catalog.TrackID, Color)) *Engine {
	if sink == nil {
		sink = func(catalog.TrackID, Color) {}
	}
	return &Engine{
		sources:  src,
		sched:    s,
		opts:     opts.withDefaults(),
		sink:     sink,
		sessions: make(map[catalog.TrackID]*Session),
	}
}

// Attach taps id's transport and starts its frame loop. Attaching an already
// attached track is a no-op.
func (e *Engine) Attach(id catalog.TrackID) error {
	if _, ok := e.sessions[id]; ok {
		return nil
	}
	src, ok := e.sources.Source(id)
	if !ok {
		return errors.Wrapf(ErrNoSource, "track %s", id)
	}

	s := newSession(e.opts)
	s.unsubscribe = src.Subscribe(s.Write)
	interval := time.Second / time.Duration(e.opts.FPS)
	s.loop = startFrameLoop(e.sched, interval, func() {
		e.sink(id, s.SampleColor())
	})
	e.sessions[id] = s
	zlog.Debug().Str("track", string(id)).Msg("visualizer attached")
	return nil
}

// Detach stops id's frame loop and releases its tap. Safe to call when not
// attached.
func (e *Engine) Detach(id catalog.TrackID) {
	s, ok := e.sessions[id]
	if !ok {
		return
	}
	delete(e.sessions, id)
	s.close()
	zlog.Debug().Str("track", string(id)).Msg("visualizer detached")
}

// Session returns id's session if attached.
func (e *Engine) Session(id catalog.TrackID) (*Session, bool) {
	s, ok := e.sessions[id]
	return s, ok
}

// Active returns the number of attached sessions.
func (e *Engine) Active() int { return len(e.sessions) }

// Close detaches every session.
func (e *Engine) Close() {
	for id := range e.sessions {
		e.Detach(id)
	}
}
