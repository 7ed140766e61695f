package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/katabasis/ui/styles"
)

const (
	loginUsername = iota
	loginPassword
)

type loginView struct {
	form form
	busy bool
	// info is shown above the form, e.g. after a successful signup
	info string
}

func newLoginView() *loginView {
	return &loginView{
		form: newForm([]string{"Username", "Password"}, map[int]bool{loginPassword: true}),
	}
}

func (v *loginView) reset() {
	v.form.reset()
	v.busy = false
}

func (v *loginView) view(width int, activity string) string {
	parts := []string{styles.HeaderStyle(width).Render("katabasis · login")}
	if v.info != "" {
		parts = append(parts, styles.InfoStyle().Render(v.info))
	}
	parts = append(parts, "", v.form.view(width), "")
	hint := "enter log in · tab next field · ctrl+s sign up · ctrl+c quit"
	if v.busy {
		hint = activity + " Logging in..."
	}
	parts = append(parts, styles.HintStyle().Render(hint))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
