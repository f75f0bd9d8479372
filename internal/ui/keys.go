package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings that are not handed to the search box.
// Terminals cannot report a held modifier, so multi-play is either a sticky
// toggle or a dedicated key that plays alongside what is already playing.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Toggle   key.Binding
	Multi    key.Binding
	Modifier key.Binding
	Party    key.Binding
	StopAll  key.Binding
	Back     key.Binding
	Forward  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "move")),
		Down:     key.NewBinding(key.WithKeys("down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		Toggle:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play/pause")),
		Multi:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "play along")),
		Modifier: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "multi")),
		Party:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "party")),
		StopAll:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "stop all")),
		Back:     key.NewBinding(key.WithKeys("alt+left", "ctrl+b"), key.WithHelp("ctrl+b/f", "history")),
		Forward:  key.NewBinding(key.WithKeys("alt+right", "ctrl+f")),
		Quit:     key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Toggle, k.Multi, k.Modifier, k.Party, k.StopAll, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Toggle, k.Multi, k.Modifier, k.StopAll},
		{k.Party, k.Back, k.Forward, k.Quit},
	}
}
