package player

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
	"github.com/olivier-w/bucketbox/internal/catalog"
	zlog "github.com/rs/zerolog/log"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bitDepth     = 2 // 16-bit = 2 bytes
	bytesPerSec  = sampleRate * channelCount * bitDepth

	pollInterval = 100 * time.Millisecond
)

// output is the sink a stream plays into. *oto.Player satisfies it.
type output interface {
	Play()
	Pause()
	IsPlaying() bool
}

type outputFactory func(r io.Reader, volume float64) (output, error)

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

func otoOutput(r io.Reader, volume float64) (output, error) {
	ctx, err := initOto()
	if err != nil {
		return nil, errors.Wrap(err, "opening audio device")
	}
	p := ctx.NewPlayer(r)
	p.SetVolume(volume)
	return p, nil
}

// Stream plays one track from its URL until it ends, fails or is stopped.
type Stream struct {
	id     catalog.TrackID
	url    string
	gen    uint64
	ext    string
	volume float64

	client    *http.Client
	newOutput outputFactory
	notify    func(Event)

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	tap *tap
	out output
}

func (s *Stream) run() {
	defer close(s.done)
	if err := s.play(); err != nil && s.ctx.Err() == nil {
		zlog.Warn().Err(err).Str("track", string(s.id)).Uint64("gen", s.gen).Msg("stream failed")
		s.emit(Failed, err)
	}
}

func (s *Stream) play() error {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "fetching %s", s.url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("fetching %s: %s", s.url, resp.Status)
	}

	dec, err := newDecoder(s.ext, resp.Body)
	if err != nil {
		return err
	}
	t := newTap(dec)
	out, err := s.newOutput(t, s.volume)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tap = t
	s.out = out
	s.mu.Unlock()

	out.Play()
	s.emit(Ready, nil)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			out.Pause()
			return nil
		case <-ticker.C:
			finished, err := t.Finished()
			if err != nil {
				out.Pause()
				return errors.Wrap(err, "decoding")
			}
			// The output drains its own buffer after the decoder is done.
			if finished && !out.IsPlaying() {
				s.emit(Ended, nil)
				return nil
			}
		}
	}
}

func (s *Stream) emit(kind EventKind, err error) {
	if s.ctx.Err() != nil {
		return
	}
	s.notify(Event{Kind: kind, ID: s.id, Gen: s.gen, Err: err})
}

// stop cancels the stream without waiting: the goroutine may be blocked
// handing an event to the loop that is calling stop.
func (s *Stream) stop() {
	s.cancel()
}

// wait blocks until the stream's goroutine has exited.
func (s *Stream) wait() {
	<-s.done
}

// Position returns how much audio has been handed to the output.
func (s *Stream) Position() time.Duration {
	s.mu.Lock()
	t := s.tap
	s.mu.Unlock()
	if t == nil {
		return 0
	}
	secs := float64(t.Pos()) / float64(bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

func (s *Stream) source() (*tap, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tap, s.tap != nil
}
