package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/katabasis/internal/core"
	"github.com/Rorical/katabasis/ui/styles"
)

const (
	signupUsername = iota
	signupEmail
	signupPassword
	signupConfirm
)

type signupView struct {
	form form
	busy bool
	err  string
}

func newSignupView() *signupView {
	return &signupView{
		form: newForm(
			[]string{"Username", "Email", "Password", "Confirm password"},
			map[int]bool{signupPassword: true, signupConfirm: true},
		),
	}
}

func (v *signupView) reset() {
	v.form.reset()
	v.busy = false
	v.err = ""
}

func (v *signupView) values() core.SignupForm {
	return core.SignupForm{
		Username:        v.form.value(signupUsername),
		Email:           v.form.value(signupEmail),
		Password:        v.form.value(signupPassword),
		ConfirmPassword: v.form.value(signupConfirm),
	}
}

func (v *signupView) view(width int, activity string) string {
	parts := []string{styles.HeaderStyle(width).Render("katabasis · sign up"), "", v.form.view(width)}
	if v.err != "" {
		parts = append(parts, styles.ErrorStyle().Render(v.err))
	}
	hint := "enter create account · tab next field · ctrl+l back to login · ctrl+c quit"
	if v.busy {
		hint = activity + " Creating account..."
	}
	parts = append(parts, "", styles.HintStyle().Render(hint))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
