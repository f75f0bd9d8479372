package search

import "net/url"

// Entry is one navigation step: a committed query and its displayable URL.
type Entry struct {
	Query string
	URL   string
}

// EntryFor builds the entry for a committed query.
func EntryFor(q string) Entry {
	return Entry{Query: q, URL: QueryURL(q)}
}

// QueryURL encodes q as the single "search" parameter.
func QueryURL(q string) string {
	return "?" + url.Values{"search": {q}}.Encode()
}

// History is a browser-style back/forward stack. Pushing after going back
// drops the forward entries.
type History struct {
	entries []Entry
	pos     int
}

// NewHistory starts a stack whose first entry is initial.
func NewHistory(initial Entry) *History {
	return &History{entries: []Entry{initial}}
}

// Push appends e after the current position.
func (h *History) Push(e Entry) {
	h.entries = append(h.entries[:h.pos+1], e)
	h.pos++
}

// Back moves one step back. ok is false at the first entry.
func (h *History) Back() (e Entry, ok bool) {
	if h.pos == 0 {
		return Entry{}, false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Forward moves one step forward. ok is false at the last entry.
func (h *History) Forward() (e Entry, ok bool) {
	if h.pos+1 >= len(h.entries) {
		return Entry{}, false
	}
	h.pos++
	return h.entries[h.pos], true
}

// Current returns the entry at the current position.
func (h *History) Current() Entry {
	return h.entries[h.pos]
}

// Len returns the number of entries, including the initial one.
func (h *History) Len() int {
	return len(h.entries)
}
