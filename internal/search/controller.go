package search

import (
	"time"

	"github.com/olivier-w/bucketbox/internal/catalog"
	"github.com/olivier-w/bucketbox/internal/sched"
	zlog "github.com/rs/zerolog/log"
)

// DefaultQuietPeriod is how long typing must pause before a query commits.
const DefaultQuietPeriod = 750 * time.Millisecond

// Options configures a Controller.
type Options struct {
	Quiet   time.Duration
	Initial string // committed without a history push, like a ?search= link
}

// Controller holds the pending and committed query and the visible subset of
// the catalog. It must only be used from the event loop that runs the
// scheduler's callbacks.
type Controller struct {
	sched   sched.Scheduler
	quiet   time.Duration
	history *History

	catalog   catalog.Catalog
	pending   string
	committed string
	visible   []catalog.TrackID

	timer sched.Timer
}

// NewController creates a controller over a not-yet-loaded catalog.
func NewController(s sched.Scheduler, opts Options) *Controller {
	if opts.Quiet <= 0 {
		opts.Quiet = DefaultQuietPeriod
	}
	return &Controller{
		sched:     s,
		quiet:     opts.Quiet,
		history:   NewHistory(EntryFor(opts.Initial)),
		pending:   opts.Initial,
		committed: opts.Initial,
	}
}

// Input records a keystroke's resulting text and restarts the quiet period.
func (c *Controller) Input(text string) {
	c.pending = text
	c.cancelTimer()
	c.timer = c.sched.AfterFunc(c.quiet, c.commit)
}

func (c *Controller) commit() {
	c.timer = nil
	c.committed = c.pending
	c.refilter()
	c.history.Push(EntryFor(c.committed))
	zlog.Debug().Str("query", c.committed).Int("visible", len(c.visible)).Msg("query committed")
}

// Navigate restores a committed query from history without pushing a new
// entry. A pending commit is cancelled so it cannot overwrite the restored
// query.
func (c *Controller) Navigate(e Entry) {
	c.cancelTimer()
	c.pending = e.Query
	c.committed = e.Query
	c.refilter()
	zlog.Debug().Str("query", c.committed).Msg("history navigation")
}

// Back navigates to the previous history entry, or to the empty query when
// there is none.
func (c *Controller) Back() {
	e, ok := c.history.Back()
	if !ok {
		e = Entry{}
	}
	c.Navigate(e)
}

// Forward navigates to the next history entry if there is one.
func (c *Controller) Forward() {
	if e, ok := c.history.Forward(); ok {
		c.Navigate(e)
	}
}

// SetCatalog installs the catalog. The visible set is recomputed at the last
// committed query without touching history.
func (c *Controller) SetCatalog(cat catalog.Catalog) {
	c.catalog = cat
	c.refilter()
}

func (c *Controller) refilter() {
	if !c.catalog.Loaded {
		c.visible = nil
		return
	}
	c.visible = Filter(c.catalog.IDs, c.committed)
}

// Close cancels a pending commit.
func (c *Controller) Close() {
	c.cancelTimer()
}

func (c *Controller) cancelTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Pending returns the text as typed.
func (c *Controller) Pending() string { return c.pending }

// Committed returns the query the visible set was computed from.
func (c *Controller) Committed() string { return c.committed }

// Visible returns the current visible set. Callers must not modify it.
func (c *Controller) Visible() []catalog.TrackID { return c.visible }

// Loaded reports whether the catalog has arrived.
func (c *Controller) Loaded() bool { return c.catalog.Loaded }

// Debouncing reports whether a commit is scheduled.
func (c *Controller) Debouncing() bool { return c.timer != nil }

// Location returns the URL of the current history entry.
func (c *Controller) Location() string { return c.history.Current().URL }

// History exposes the navigation stack.
func (c *Controller) History() *History { return c.history }
