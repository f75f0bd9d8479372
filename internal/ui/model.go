package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/bucketbox/internal/catalog"
	"github.com/olivier-w/bucketbox/internal/playback"
	"github.com/olivier-w/bucketbox/internal/player"
	"github.com/olivier-w/bucketbox/internal/sched"
	"github.com/olivier-w/bucketbox/internal/search"
	"github.com/olivier-w/bucketbox/internal/visualizer"
	zlog "github.com/rs/zerolog/log"
)

// Deck is the transport the model drives. Its events must be delivered to
// the program as player.Event messages.
type Deck interface {
	playback.Transport
	visualizer.Sources
	Position(id catalog.TrackID) time.Duration
}

// Options wires a Model.
type Options struct {
	Context context.Context
	Source  catalog.Source
	Deck    Deck
	// Sched must deliver its callbacks on the program's loop, e.g. a
	// sched.Loop bound to (*tea.Program).Send.
	Sched      sched.Scheduler
	BaseURL    string
	Quiet      time.Duration
	Initial    string
	Exclusive  bool
	PartyMode  bool
	Visualizer visualizer.Options
}

// Model is the Bubbletea model for the bucketbox TUI. It owns the session:
// one search controller, one playback controller and one visualizer engine.
type Model struct {
	ctx      context.Context
	src      catalog.Source
	deck     Deck
	search   *search.Controller
	playback *playback.Controller
	viz      *visualizer.Engine
	colors   *colorBank

	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	cursor   int
	sticky   bool // multi-play modifier latched on
	title    string
	loadErr  error
	width    int
	height   int
	quitting bool
}

// New creates the model. The catalog starts loading on Init.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	sc := search.NewController(opts.Sched, search.Options{Quiet: opts.Quiet, Initial: opts.Initial})
	colors := newColorBank(opts.Visualizer.FPS)
	viz := visualizer.NewEngine(opts.Deck, opts.Sched, opts.Visualizer, colors.push)
	base := opts.BaseURL
	pc := playback.NewController(opts.Deck, viz, playback.Options{
		Exclusive: opts.Exclusive,
		PartyMode: opts.PartyMode,
		URL:       func(id catalog.TrackID) string { return catalog.URL(base, id) },
		Visible:   sc.Visible,
	})

	ti := textinput.New()
	ti.Placeholder = "search"
	ti.Prompt = "🔍 "
	ti.CharLimit = 256
	ti.Width = 60
	ti.SetValue(opts.Initial)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = timeStyle

	h := help.New()
	h.Styles.ShortKey = helpStyle
	h.Styles.ShortDesc = helpStyle
	h.Styles.ShortSeparator = helpStyle

	return Model{
		ctx:      opts.Context,
		src:      opts.Source,
		deck:     opts.Deck,
		search:   sc,
		playback: pc,
		viz:      viz,
		colors:   colors,
		input:    ti,
		spinner:  sp,
		help:     h,
		keys:     defaultKeyMap(),
		title:    playback.IdleLabel,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadCatalogCmd(m.ctx, m.src, 0),
		tickCmd(),
		m.spinner.Tick,
		textinput.Blink,
		tea.SetWindowTitle(m.title),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		if m.quitting {
			return m, cmd
		}
		cmds = append(cmds, cmd)

	case sched.Fired:
		msg.Run()

	case player.Event:
		m.handleTransport(msg)

	case catalogLoadedMsg:
		m.loadErr = nil
		m.search.SetCatalog(catalog.NewLoaded(msg.ids))

	case catalogFailedMsg:
		if m.ctx.Err() != nil {
			return m, nil
		}
		m.loadErr = msg.err
		zlog.Warn().Err(msg.err).Int("attempt", msg.attempt).Dur("retry_in", backoff(msg.attempt)).Msg("catalog load failed")
		cmds = append(cmds, retryCatalogCmd(msg.attempt))

	case loadCatalogMsg:
		cmds = append(cmds, loadCatalogCmd(m.ctx, m.src, msg.attempt))

	case tickMsg:
		m.colors.prune(func(id catalog.TrackID) bool {
			_, ok := m.viz.Session(id)
			return ok
		})
		cmds = append(cmds, tickCmd())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-8, 10)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.clampCursor()
	if m.playback.Label() != m.title {
		m.title = m.playback.Label()
		cmds = append(cmds, tea.SetWindowTitle(m.title))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.shutdown()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case key.Matches(msg, m.keys.Back):
		m.search.Back()
		m.syncInput()
	case key.Matches(msg, m.keys.Forward):
		m.search.Forward()
		m.syncInput()

	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.rowsAvailable()
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.rowsAvailable()

	case key.Matches(msg, m.keys.Toggle):
		if id, ok := m.selected(); ok {
			m.playback.Toggle(id)
		}
	case key.Matches(msg, m.keys.Multi):
		if id, ok := m.selected(); ok {
			m.playback.SetModifier(true)
			m.playback.Toggle(id)
			m.playback.SetModifier(m.sticky)
		}
	case key.Matches(msg, m.keys.Modifier):
		m.sticky = !m.sticky
		m.playback.SetModifier(m.sticky)
	case key.Matches(msg, m.keys.Party):
		m.playback.SetPartyMode(!m.playback.PartyMode())
	case key.Matches(msg, m.keys.StopAll):
		m.playback.StopAll()

	default:
		prev := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != prev {
			m.search.Input(v)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleTransport(ev player.Event) {
	switch ev.Kind {
	case player.Ready:
		m.playback.TransportReady(ev.ID, ev.Gen)
	case player.Ended:
		m.playback.TrackEnded(ev.ID, ev.Gen)
	case player.Failed:
		m.playback.TrackFailed(ev.ID, ev.Gen, ev.Err)
	}
}

// syncInput shows the query restored by history navigation.
func (m *Model) syncInput() {
	m.input.SetValue(m.search.Pending())
	m.input.CursorEnd()
	m.cursor = 0
}

func (m *Model) clampCursor() {
	n := len(m.search.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (catalog.TrackID, bool) {
	visible := m.search.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return "", false
	}
	return visible[m.cursor], true
}

func (m Model) shutdown() {
	m.search.Close()
	m.playback.StopAll()
	m.viz.Close()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	lines := "\n"
	lines += "  " + headerStyle.Render("bucketbox") + "  " + titleStyle.Render(m.playback.Label()) + "\n"
	lines += "\n"
	lines += "  " + m.input.View() + "\n"
	lines += "  " + m.statusLine() + "\n"
	lines += "\n"
	for _, row := range m.renderRows() {
		lines += "  " + row + "\n"
	}
	lines += "\n"
	lines += "  " + m.help.View(m.keys) + "\n"
	return lines
}
