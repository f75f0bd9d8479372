package playback

import (
	"github.com/olivier-w/bucketbox/internal/catalog"
	zlog "github.com/rs/zerolog/log"
)

// Labels for the now-playing projection.
const (
	IdleLabel   = "🎶"
	labelPrefix = "🎶 — "
)

// Transport starts and stops audio for one track. Start must not block on
// network or decode work; readiness and the end of the track are reported
// back through TransportReady, TrackEnded and TrackFailed carrying gen.
type Transport interface {
	Start(id catalog.TrackID, url string, gen uint64) error
	Stop(id catalog.TrackID)
}

// Visualizer is attached to a track once its transport is ready and detached
// on every path out of Playing.
type Visualizer interface {
	Attach(id catalog.TrackID) error
	Detach(id catalog.TrackID)
}

// Options configures a Controller.
type Options struct {
	// Exclusive limits playback to one track unless the modifier is held.
	Exclusive bool
	PartyMode bool
	// URL resolves a track to the address handed to the transport.
	URL func(catalog.TrackID) string
	// Visible returns the visible set at call time; used for auto-advance.
	Visible func() []catalog.TrackID
	// OnLabel receives the now-playing label whenever it changes.
	OnLabel func(string)
}

type track struct {
	state State
	gen   uint64
}

// Controller owns the playing set. All methods must be called from the single
// event loop.
type Controller struct {
	transport Transport
	viz       Visualizer
	opts      Options

	tracks   map[catalog.TrackID]*track
	order    []catalog.TrackID // playing set, in request order
	attached map[catalog.TrackID]bool

	gen      uint64
	modifier bool
	party    bool
	label    string
}

// NewController creates a controller with nothing playing. viz may be nil.
func NewController(t Transport, viz Visualizer, opts Options) *Controller {
	if opts.URL == nil {
		opts.URL = func(id catalog.TrackID) string { return string(id) }
	}
	if opts.Visible == nil {
		opts.Visible = func() []catalog.TrackID { return nil }
	}
	return &Controller{
		transport: t,
		viz:       viz,
		opts:      opts,
		tracks:    make(map[catalog.TrackID]*track),
		attached:  make(map[catalog.TrackID]bool),
		party:     opts.PartyMode,
		label:     IdleLabel,
	}
}

// RequestPlay starts id. Other tracks are stopped first when exclusive mode
// applies. Requesting a track that is already Loading or Playing is a no-op.
func (c *Controller) RequestPlay(id catalog.TrackID) {
	c.requestPlay(id, c.modifier)
}

func (c *Controller) requestPlay(id catalog.TrackID, keepOthers bool) {
	if c.State(id) != Idle {
		return
	}
	if c.opts.Exclusive && !keepOthers && len(c.order) > 0 {
		for _, other := range append([]catalog.TrackID(nil), c.order...) {
			zlog.Debug().Str("track", string(other)).Msg("stopped by exclusive play")
			c.stop(other)
		}
	}

	c.gen++
	t := &track{state: Loading, gen: c.gen}
	c.tracks[id] = t
	c.order = append(c.order, id)
	c.updateLabel()

	if err := c.transport.Start(id, c.opts.URL(id), t.gen); err != nil {
		zlog.Warn().Err(err).Str("track", string(id)).Msg("transport start failed")
		c.reset(id)
		c.updateLabel()
	}
}

// RequestPause returns id to Idle from any state.
func (c *Controller) RequestPause(id catalog.TrackID) {
	if c.State(id) == Idle {
		return
	}
	c.stop(id)
	c.updateLabel()
}

// Toggle pauses id when it is active and plays it otherwise.
func (c *Controller) Toggle(id catalog.TrackID) {
	if c.State(id) == Idle {
		c.RequestPlay(id)
		return
	}
	c.RequestPause(id)
}

// TransportReady moves id from Loading to Playing. Events for tracks that
// are no longer Loading, or from an earlier start, are dropped.
func (c *Controller) TransportReady(id catalog.TrackID, gen uint64) {
	t, ok := c.current(id, gen)
	if !ok || t.state != Loading {
		zlog.Debug().Str("track", string(id)).Uint64("gen", gen).Msg("dropped stale ready")
		return
	}
	t.state = Playing
	if c.party {
		c.attach(id)
	}
}

// TrackEnded moves id from Playing to Idle and starts the track after it in
// the visible set as it is now. Nothing follows when id was filtered out or
// was the last visible track. Exclusive mode is not applied to the advance:
// other playing tracks keep playing.
func (c *Controller) TrackEnded(id catalog.TrackID, gen uint64) {
	t, ok := c.current(id, gen)
	if !ok || t.state != Playing {
		zlog.Debug().Str("track", string(id)).Uint64("gen", gen).Msg("dropped stale end")
		return
	}
	c.stop(id)
	c.updateLabel()

	next, ok := nextAfter(c.opts.Visible(), id)
	if !ok {
		return
	}
	zlog.Debug().Str("track", string(id)).Str("next", string(next)).Msg("auto-advance")
	c.requestPlay(next, true)
}

// TrackFailed returns id to Idle after a transport error. No auto-advance.
func (c *Controller) TrackFailed(id catalog.TrackID, gen uint64, err error) {
	if _, ok := c.current(id, gen); !ok {
		return
	}
	zlog.Warn().Err(err).Str("track", string(id)).Msg("playback failed")
	c.stop(id)
	c.updateLabel()
}

// StopAll returns every track to Idle.
func (c *Controller) StopAll() {
	for _, id := range append([]catalog.TrackID(nil), c.order...) {
		c.stop(id)
	}
	c.updateLabel()
}

// SetModifier records whether the multi-play modifier is held.
func (c *Controller) SetModifier(held bool) { c.modifier = held }

// Modifier reports whether the multi-play modifier is held.
func (c *Controller) Modifier() bool { return c.modifier }

// SetPartyMode turns the visualizer on or off, attaching to or detaching from
// tracks that are already Playing.
func (c *Controller) SetPartyMode(on bool) {
	if c.party == on {
		return
	}
	c.party = on
	for _, id := range c.order {
		if c.tracks[id].state != Playing {
			continue
		}
		if on {
			c.attach(id)
		} else {
			c.detach(id)
		}
	}
}

// PartyMode reports whether the visualizer is enabled.
func (c *Controller) PartyMode() bool { return c.party }

// State returns id's state. Untracked ids are Idle.
func (c *Controller) State(id catalog.TrackID) State {
	if t, ok := c.tracks[id]; ok {
		return t.state
	}
	return Idle
}

// PlayingSet returns the Loading and Playing tracks in request order.
func (c *Controller) PlayingSet() []catalog.TrackID {
	return append([]catalog.TrackID(nil), c.order...)
}

// Label returns the now-playing label.
func (c *Controller) Label() string { return c.label }

func (c *Controller) current(id catalog.TrackID, gen uint64) (*track, bool) {
	t, ok := c.tracks[id]
	if !ok || t.gen != gen {
		return nil, false
	}
	return t, true
}

// stop releases everything held for id and resets it to Idle. The label is
// left to the caller so a batch of stops updates it once.
func (c *Controller) stop(id catalog.TrackID) {
	c.detach(id)
	c.transport.Stop(id)
	c.reset(id)
}

func (c *Controller) reset(id catalog.TrackID) {
	delete(c.tracks, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Controller) attach(id catalog.TrackID) {
	if c.viz == nil || c.attached[id] {
		return
	}
	if err := c.viz.Attach(id); err != nil {
		zlog.Warn().Err(err).Str("track", string(id)).Msg("visualizer attach failed")
		return
	}
	c.attached[id] = true
}

func (c *Controller) detach(id catalog.TrackID) {
	if !c.attached[id] {
		return
	}
	delete(c.attached, id)
	c.viz.Detach(id)
}

func (c *Controller) updateLabel() {
	label := IdleLabel
	if len(c.order) > 0 {
		label = labelPrefix + c.order[0].Base()
	}
	if label == c.label {
		return
	}
	c.label = label
	if c.opts.OnLabel != nil {
		c.opts.OnLabel(label)
	}
}

func nextAfter(visible []catalog.TrackID, id catalog.TrackID) (catalog.TrackID, bool) {
	for i, v := range visible {
		if v == id {
			if i+1 < len(visible) {
				return visible[i+1], true
			}
			return "", false
		}
	}
	return "", false
}
