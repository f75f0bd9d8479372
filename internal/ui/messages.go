package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/bucketbox/internal/catalog"
)

const (
	tickInterval = 500 * time.Millisecond
	maxBackoff   = 30 * time.Second
)

type tickMsg time.Time

type catalogLoadedMsg struct {
	ids []catalog.TrackID
}

type catalogFailedMsg struct {
	err     error
	attempt int
}

type loadCatalogMsg struct {
	attempt int
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadCatalogCmd(ctx context.Context, src catalog.Source, attempt int) tea.Cmd {
	return func() tea.Msg {
		ids, err := catalog.Load(ctx, src)
		if err != nil {
			return catalogFailedMsg{err: err, attempt: attempt}
		}
		return catalogLoadedMsg{ids: ids}
	}
}

// retryCatalogCmd waits out the backoff for a failed attempt and asks for
// the next one.
func retryCatalogCmd(failed int) tea.Cmd {
	return tea.Tick(backoff(failed), func(time.Time) tea.Msg {
		return loadCatalogMsg{attempt: failed + 1}
	})
}

// backoff doubles from one second per failed attempt, capped.
func backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}
