// Package playback runs the per-track play/pause state machine shared by
// every visible track, including exclusive versus concurrent playback and
// advancing to the next visible track when one ends.
package playback

// State is a track's playback state.
type State int

const (
	Idle    State = iota // not playing; also every track never touched
	Loading              // transport started, not yet ready
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}
