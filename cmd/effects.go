package cmd

import (
	"fmt"
	"io"

	"github.com/Rorical/katabasis/internal/models"
)

// printEffects reports controller effects on a line-oriented terminal.
type printEffects struct {
	out io.Writer
}

func (p printEffects) Navigate(view models.View) {
	if view == models.ViewLogin {
		fmt.Fprintln(p.out, "You are signed out. Run `katabasis login` to sign in again.")
	}
}

func (p printEffects) Notify(n models.Notice) {
	fmt.Fprintf(p.out, "%s: %s\n", n.Title, n.Message)
	if n.Detail != "" {
		fmt.Fprintf(p.out, "  %s\n", n.Detail)
	}
}
