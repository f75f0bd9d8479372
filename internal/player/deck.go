package player

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/olivier-w/bucketbox/internal/catalog"
	"github.com/olivier-w/bucketbox/internal/media"
	"github.com/olivier-w/bucketbox/internal/visualizer"
	zlog "github.com/rs/zerolog/log"
)

// EventKind tells what happened to a stream.
type EventKind int

const (
	Ready EventKind = iota
	Ended
	Failed
)

func (k EventKind) String() string {
	switch k {
	case Ready:
		return "ready"
	case Ended:
		return "ended"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is delivered from a stream goroutine. Gen is the value passed to
// Start, so the receiver can drop events from streams it already replaced.
type Event struct {
	Kind EventKind
	ID   catalog.TrackID
	Gen  uint64
	Err  error
}

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("player: deck closed")

// Options configures a Deck.
type Options struct {
	Client *http.Client
	Volume float64

	newOutput outputFactory
}

// Deck runs one Stream per playing track. Any number of tracks may play at
// once; they mix in the shared output context.
type Deck struct {
	opts   Options
	notify func(Event)

	mu      sync.Mutex
	streams map[catalog.TrackID]*Stream
	closed  bool
}

// NewDeck creates a deck. notify is called from stream goroutines.
func NewDeck(notify func(Event), opts Options) *Deck {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Volume <= 0 || opts.Volume > 1 {
		opts.Volume = 0.8
	}
	if opts.newOutput == nil {
		opts.newOutput = otoOutput
	}
	return &Deck{
		opts:    opts,
		notify:  notify,
		streams: make(map[catalog.TrackID]*Stream),
	}
}

// Start begins fetching and playing url for id. It returns without waiting
// for the network; Ready, Ended or Failed follow through notify.
func (d *Deck) Start(id catalog.TrackID, url string, gen uint64) error {
	ext := media.Ext(string(id))
	if !media.IsSupportedExt(ext) {
		return errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if old, ok := d.streams[id]; ok {
		old.stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Stream{
		id:        id,
		url:       url,
		gen:       gen,
		ext:       ext,
		volume:    d.opts.Volume,
		client:    d.opts.Client,
		newOutput: d.opts.newOutput,
		notify:    d.notify,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	d.streams[id] = s
	zlog.Debug().Str("track", string(id)).Uint64("gen", gen).Str("url", url).Msg("stream start")
	go s.run()
	return nil
}

// Stop silences id. Unknown ids are ignored.
func (d *Deck) Stop(id catalog.TrackID) {
	d.mu.Lock()
	s, ok := d.streams[id]
	delete(d.streams, id)
	d.mu.Unlock()
	if ok {
		zlog.Debug().Str("track", string(id)).Uint64("gen", s.gen).Msg("stream stop")
		s.stop()
	}
}

// Source returns the decoded signal of id once its stream is ready.
func (d *Deck) Source(id catalog.TrackID) (visualizer.Source, bool) {
	d.mu.Lock()
	s, ok := d.streams[id]
	d.mu.Unlock()
	if !ok {
		return nil, false
	}
	t, ok := s.source()
	if !ok {
		return nil, false
	}
	return t, true
}

// Position returns the elapsed time of id, or zero.
func (d *Deck) Position(id catalog.TrackID) time.Duration {
	d.mu.Lock()
	s, ok := d.streams[id]
	d.mu.Unlock()
	if !ok {
		return 0
	}
	return s.Position()
}

// Close stops every stream and waits for their goroutines. notify must not
// block by then.
func (d *Deck) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	streams := d.streams
	d.streams = make(map[catalog.TrackID]*Stream)
	d.mu.Unlock()

	for _, s := range streams {
		s.stop()
	}
	for _, s := range streams {
		s.wait()
	}
}
