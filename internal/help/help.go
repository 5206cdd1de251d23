package help

import (
	"fmt"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/robinovitch61/vl/internal/constants"
	"github.com/robinovitch61/vl/internal/keymap"
	"strings"
)

// Markdown returns the key bindings as a markdown table
func Markdown(bindings []key.Binding) string {
	var sb strings.Builder
	sb.WriteString("# Help\n\n")
	sb.WriteString("| key | action |\n")
	sb.WriteString("|-----|--------|\n")
	for _, b := range bindings {
		if !b.Enabled() || b.Help().Key == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", b.Help().Key, b.Help().Desc))
	}
	sb.WriteString("\n*press any key to hide*\n")
	return sb.String()
}

// MakeHelp renders the help overlay for width columns. Falls back to the raw markdown if rendering fails
func MakeHelp(keyMap keymap.KeyMap, width int) string {
	md := Markdown(keymap.HelpKeyBindings(keyMap))
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(max(20, min(width, constants.HelpMaxWidth))),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
