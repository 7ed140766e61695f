package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/katabasis/ui/styles"
)

// RenderInput boxes a text input's view. A disabled box is drawn muted.
func RenderInput(input string, disabled bool, width int) string {
	if disabled {
		return styles.DisabledInputStyle(width).Render(input)
	}
	return styles.InputStyle(width).Render(input)
}

// RenderField is a labelled form input.
func RenderField(label, input string, focused bool, width int) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.LabelStyle(focused).Render(label),
		RenderInput(input, !focused, width),
	)
}
