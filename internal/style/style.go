package style

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	altForeground = lipgloss.AdaptiveColor{Light: "#5A5A5A", Dark: "#A8A8A8"}
	altBackground = lipgloss.AdaptiveColor{Light: "#E4E4E4", Dark: "#303030"}
)

var (
	Regular       = lipgloss.NewStyle()
	Bold          = Regular.Bold(true)
	Inverse       = Regular.Reverse(true)
	AltInverse    = Regular.Foreground(altBackground).Background(altForeground)
	Faint         = Regular.Foreground(altForeground)
	SelectedRow   = Inverse
	FocusedRow    = Inverse.Bold(true)
	Placeholder   = Faint.Italic(true)
	Footer        = Bold
	FilterEditing = Inverse
	FilterApplied = AltInverse
	KeyHelp       = Bold.Underline(true)
	Toast         = Regular.Background(altBackground).Padding(0, 1)
)
