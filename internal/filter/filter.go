package filter

import (
	"fmt"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robinovitch61/vl/internal/dev"
	"github.com/robinovitch61/vl/internal/keymap"
	"github.com/robinovitch61/vl/internal/style"
)

type filterKeyMap struct {
	Forward key.Binding
	Back    key.Binding
	Filter  key.Binding
}

// Model is the filter input line. The text being edited only takes effect when applied, since every applied
// filter reloads the list from its first page
type Model struct {
	KeyMap    filterKeyMap
	textinput textinput.Model
	applied   string
	suffix    string
}

func New(km keymap.KeyMap) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorHide)

	return Model{
		KeyMap: filterKeyMap{
			Forward: km.Enter,
			Back:    km.Clear,
			Filter:  km.Filter,
		},
		textinput: ti,
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	dev.DebugUpdateMsg("Filter", msg)
	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	return m, cmd
}

func (m Model) View(width int) string {
	var prompt, value string
	st := style.Regular
	switch {
	case m.textinput.Focused() && m.textinput.Value() == "":
		// editing but no filter value yet
		st = style.FilterEditing
		value = "type to filter "
		m.textinput.Cursor.SetMode(cursor.CursorHide)
	case m.textinput.Focused():
		st = style.FilterEditing
		prompt = "filter: "
		value = m.textinput.Value()
	case m.applied != "":
		st = style.FilterApplied
		prompt = "filter: "
		value = m.applied
	default:
		value = fmt.Sprintf("'%s' to filter", m.KeyMap.Filter.Help().Key)
	}

	m.textinput.Prompt = prompt
	m.textinput.PromptStyle = st
	m.textinput.TextStyle = st
	m.textinput.Cursor.Style = lipgloss.NewStyle()
	m.textinput.Cursor.TextStyle = st
	m.textinput.SetValue(value + m.suffix)
	return st.PaddingLeft(1).MaxWidth(width).Render(m.textinput.View())
}

// Value returns the text being edited
func (m Model) Value() string {
	return m.textinput.Value()
}

// Applied returns the filter in effect
func (m Model) Applied() string {
	return m.applied
}

func (m Model) Focused() bool {
	return m.textinput.Focused()
}

// Focus starts editing from the applied filter
func (m *Model) Focus() {
	m.textinput.SetValue(m.applied)
	m.textinput.CursorEnd()
	m.textinput.Cursor.SetMode(cursor.CursorBlink)
	m.textinput.Focus()
}

// Apply stops editing and makes the edited text the filter in effect. Returns true if the filter changed
func (m *Model) Apply() bool {
	m.blur()
	changed := m.textinput.Value() != m.applied
	m.applied = m.textinput.Value()
	return changed
}

// Cancel stops editing and restores the applied filter
func (m *Model) Cancel() {
	m.blur()
	m.textinput.SetValue(m.applied)
}

// Clear stops editing and drops the applied filter. Returns true if a filter was applied
func (m *Model) Clear() bool {
	m.blur()
	changed := m.applied != ""
	m.applied = ""
	m.textinput.SetValue("")
	return changed
}

func (m *Model) SetSuffix(suffix string) {
	m.suffix = suffix
}

func (m *Model) blur() {
	m.textinput.Cursor.SetMode(cursor.CursorHide)
	m.textinput.Blur()
}
