package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/bucketbox/internal/catalog"
	"github.com/olivier-w/bucketbox/internal/playback"
	"github.com/olivier-w/bucketbox/internal/util"
)

const (
	defaultRows = 20
	// header, search box, status and help lines around the track list
	chromeLines = 9
)

func (m Model) rowsAvailable() int {
	if m.height <= 0 {
		return defaultRows
	}
	return max(m.height-chromeLines, 1)
}

func (m Model) statusLine() string {
	var parts []string
	switch {
	case m.loadErr != nil:
		return errorStyle.Render(fmt.Sprintf("catalog unavailable: %v (retrying)", m.loadErr))
	case !m.search.Loaded():
		return statusStyle.Render(m.spinner.View() + " loading catalog")
	}

	if loc := m.search.Location(); loc != "" {
		parts = append(parts, loc)
	}
	switch n := len(m.search.Visible()); {
	case m.search.Committed() == "":
		parts = append(parts, "type to search")
	case n == 1:
		parts = append(parts, "1 track")
	default:
		parts = append(parts, fmt.Sprintf("%d tracks", n))
	}
	if m.search.Debouncing() {
		parts = append(parts, "…")
	}
	if m.sticky {
		parts = append(parts, "[multi]")
	}
	if m.playback.PartyMode() {
		parts = append(parts, "[party]")
	}
	return statusStyle.Render(strings.Join(parts, "  "))
}

func (m Model) renderRows() []string {
	visible := m.search.Visible()
	if len(visible) == 0 {
		return nil
	}
	avail := m.rowsAvailable()
	start := 0
	if m.cursor >= avail {
		start = m.cursor - avail + 1
	}
	end := min(start+avail, len(visible))

	nameWidth := 60
	if m.width > 0 {
		nameWidth = max(m.width-16, 10)
	}

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, m.renderRow(visible[i], i == m.cursor, nameWidth))
	}
	return rows
}

func (m Model) renderRow(id catalog.TrackID, selected bool, nameWidth int) string {
	pointer := "  "
	if selected {
		pointer = "> "
	}

	state := m.playback.State(id)
	marker := "  "
	switch state {
	case playback.Loading:
		marker = m.spinner.View() + " "
	case playback.Playing:
		marker = "▶ "
	}

	style := rowStyle
	if selected {
		style = selectedStyle
	}
	if _, ok := m.viz.Session(id); ok {
		if c, ok := m.colors.get(id); ok {
			style = style.Foreground(lipgloss.Color(c.Hex()))
		}
	}

	row := pointer + marker + style.Render(util.Ellipsize(string(id), nameWidth))
	if state == playback.Playing {
		row += "  " + timeStyle.Render(util.FormatDuration(m.deck.Position(id)))
	}
	return row
}
