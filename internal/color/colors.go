package color

import (
	"github.com/charmbracelet/lipgloss"
	"hash/fnv"
)

var labelColors = []lipgloss.Color{
	lipgloss.Color("#58A2EE"), // blue
	lipgloss.Color("#3FE34B"), // bright green
	lipgloss.Color("#7c60d7"), // purple
	lipgloss.Color("#FD2C4C"), // red
	lipgloss.Color("#FE7A00"), // orange
	lipgloss.Color("#56EBD3"), // teal
	lipgloss.Color("#D6A112"), // gold
	lipgloss.Color("#FF7E6A"), // tomato
}

// ForID returns a color that is stable for an item ID across sessions, pages and filters
func ForID(id string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return labelColors[h.Sum32()%uint32(len(labelColors))]
}
