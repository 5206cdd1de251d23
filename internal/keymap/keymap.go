package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

type KeyMap struct {
	Bottom       key.Binding
	Clear        key.Binding
	Copy         key.Binding
	Down         key.Binding
	Enter        key.Binding
	Filter       key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
	Help         key.Binding
	PageDown     key.Binding
	PageUp       key.Binding
	Quit         key.Binding
	Save         key.Binding
	Top          key.Binding
	Up           key.Binding
	Wrap         key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "discard filter"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy selected row"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "next row"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply filter"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "edit filter"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "half page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "half page up"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "show/hide help"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f", "ctrl+f"),
			key.WithHelp("f/pgdn", "page down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b", "ctrl+b"),
			key.WithHelp("b/pgup", "page up"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save visible rows to file"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "previous row"),
		),
		Wrap: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "toggle line wrap"),
		),
	}
}

// HelpKeyBindings lists the bindings shown in the help overlay, in display order
func HelpKeyBindings(km KeyMap) []key.Binding {
	return []key.Binding{
		km.Up,
		km.Down,
		km.PageUp,
		km.PageDown,
		km.HalfPageUp,
		km.HalfPageDown,
		km.Top,
		km.Bottom,
		km.Wrap,
		km.Filter,
		km.Enter,
		WithDesc(km.Clear, "discard filter / stop editing"),
		km.Copy,
		km.Save,
		km.Help,
		km.Quit,
	}
}

func WithKeys(k key.Binding, keys string) key.Binding {
	newK := k
	newK.SetHelp(keys, k.Help().Desc)
	return newK
}

func WithDesc(k key.Binding, d string) key.Binding {
	newK := k
	newK.SetHelp(newK.Help().Key, d)
	return newK
}
