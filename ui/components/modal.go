package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/katabasis/ui/styles"
)

// Modal is a blocking dialog drawn over the whole screen.
type Modal struct {
	Title     string
	Body      string
	Detail    string
	Hint      string
	Dangerous bool
}

func RenderModal(m Modal, width, height int) string {
	lines := []string{styles.ModalTitleStyle(m.Dangerous).Render(m.Title)}
	if m.Body != "" {
		lines = append(lines, "", m.Body)
	}
	if m.Detail != "" {
		lines = append(lines, styles.HintStyle().Render(m.Detail))
	}
	if m.Hint != "" {
		lines = append(lines, "", styles.HintStyle().Render(m.Hint))
	}
	box := styles.ModalStyle(m.Dangerous).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
