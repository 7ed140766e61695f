package styles

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("62")
	muted  = lipgloss.Color("241")
	danger = lipgloss.Color("196")
)

func InputStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width)
}

func DisabledInputStyle(width int) lipgloss.Style {
	return InputStyle(width).BorderForeground(muted)
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(muted).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(width)
}

func HeaderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true).
		Padding(0, 2).
		Width(width).
		Align(lipgloss.Center)
}

func PlaceholderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Padding(0, 2)
}

func UserStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("39")).
		Padding(0, 1).
		MarginLeft(2)
}

func AgentStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("214")).
		Padding(0, 1).
		MarginLeft(2)
}

func LabelStyle(focused bool) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(muted)
	if focused {
		s = s.Foreground(accent).Bold(true)
	}
	return s
}

func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(danger)
}

func InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("72"))
}

func HintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(muted)
}

func ModalStyle(dangerous bool) lipgloss.Style {
	border := accent
	if dangerous {
		border = danger
	}
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Padding(1, 3)
}

func ModalTitleStyle(dangerous bool) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	if dangerous {
		s = s.Foreground(danger)
	}
	return s
}
