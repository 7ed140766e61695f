// Package core holds the session-gated controllers: the conversation turn
// loop, the account lifecycle and login/signup.
//
// Controllers never hand errors to the presentation layer. Every failure is
// turned into a state change, a navigation or a notice before a call returns.
package core

import (
	"github.com/Rorical/katabasis/internal/models"
)

// Effects receives the side effects controllers produce.
type Effects interface {
	Navigate(view models.View)
	Notify(notice models.Notice)
}

// Discard drops every effect.
type Discard struct{}

func (Discard) Navigate(models.View) {}
func (Discard) Notify(models.Notice) {}
