package util

import (
	"github.com/charmbracelet/lipgloss"
	"strings"
)

// JoinWithEqualSpacing spreads items over width, truncating from the right when they do not fit
func JoinWithEqualSpacing(width int, items ...string) string {
	if len(items) == 0 || width <= 0 {
		return ""
	}

	totalContentWidth := 0
	for _, item := range items {
		totalContentWidth += lipgloss.Width(item)
	}

	if totalContentWidth > width {
		var result strings.Builder
		remainingWidth := width
		for _, item := range items {
			if remainingWidth <= 0 {
				break
			}
			itemWidth := lipgloss.Width(item)
			if itemWidth > remainingWidth {
				result.WriteString(lipgloss.NewStyle().MaxWidth(remainingWidth).Render(item))
				break
			}
			result.WriteString(item)
			remainingWidth -= itemWidth
		}
		return result.String()
	}

	if len(items) == 1 {
		return items[0]
	}
	totalSpacing := width - totalContentWidth
	baseSpacing := totalSpacing / (len(items) - 1)
	extraSpacing := totalSpacing % (len(items) - 1)

	var result strings.Builder
	for i, item := range items {
		result.WriteString(item)
		if i < len(items)-1 {
			spaces := baseSpacing
			if i < extraSpacing {
				spaces++
			}
			result.WriteString(strings.Repeat(" ", spaces))
		}
	}
	return result.String()
}
