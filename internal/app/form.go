package app

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/katabasis/ui/components"
)

// form is a column of text inputs with one focused at a time.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(labels []string, secret map[int]bool) form {
	f := form{labels: labels, inputs: make([]textinput.Model, len(labels))}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		if secret[i] {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.inputs[i] = ti
	}
	return f
}

func (f *form) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *form) blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *form) next() tea.Cmd {
	f.focus = (f.focus + 1) % len(f.inputs)
	return f.focusCurrent()
}

func (f *form) prev() tea.Cmd {
	f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
	return f.focusCurrent()
}

func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.focus = 0
}

func (f *form) value(i int) string { return f.inputs[i].Value() }

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) resize(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = width - 4
	}
}

func (f *form) view(width int) string {
	fields := make([]string, 0, len(f.inputs))
	for i := range f.inputs {
		fields = append(fields, components.RenderField(f.labels[i], f.inputs[i].View(), i == f.focus, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, fields...)
}
