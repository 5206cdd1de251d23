package listview

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/robinovitch61/vl/internal/color"
	"github.com/robinovitch61/vl/internal/constants"
	"github.com/robinovitch61/vl/internal/source"
	"github.com/robinovitch61/vl/internal/style"
	"strings"
)

const gutter = "▌ "

// Row is the pooled element behind one rendered slot. It keeps the lines last rendered for its bound index, so
// View only concatenates
type Row struct {
	Lines  []string
	Item   source.Item
	Loaded bool
}

type renderParams struct {
	width int
	state State
}

// lines renders the row at index for the given params. Placeholders always take one line
func (p renderParams) lines(index int, item source.Item, loaded bool) []string {
	contentWidth := max(1, p.width-runewidth.StringWidth(gutter))

	var content []string
	var gutterStyle, textStyle lipgloss.Style
	if loaded {
		content = wrapOrTruncate(item.Text, contentWidth, p.state.Wrap)
		gutterStyle = lipgloss.NewStyle().Foreground(color.ForID(item.ID))
		textStyle = style.Regular
	} else {
		content = []string{runewidth.Truncate(constants.PlaceholderText, contentWidth, "")}
		gutterStyle = style.Placeholder
		textStyle = style.Placeholder
	}

	selected := index == p.state.SelectedIndex
	if selected {
		textStyle = style.SelectedRow
		if p.state.Focused {
			textStyle = style.FocusedRow
		}
	}

	res := make([]string, len(content))
	for i := range content {
		line := content[i]
		if selected {
			// highlight the full width of the selection
			line += strings.Repeat(" ", max(0, contentWidth-runewidth.StringWidth(line)))
		}
		prefix := strings.Repeat(" ", runewidth.StringWidth(gutter))
		if i == 0 {
			prefix = gutterStyle.Render(gutter)
		}
		res[i] = prefix + textStyle.Render(line)
	}
	return res
}

func wrapOrTruncate(s string, width int, wrapText bool) []string {
	if !wrapText {
		return []string{runewidth.Truncate(s, width, constants.ContinuationIndicator)}
	}
	wrapped := wrap.String(wordwrap.String(s, width), width)
	lines := strings.Split(wrapped, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return lines
}
