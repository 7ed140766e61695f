package components

import (
	"strings"

	"github.com/Rorical/katabasis/ui/styles"
)

// Status is what the bottom bar shows.
type Status struct {
	Profile  string
	Persona  string
	Subject  string
	State    string
	Activity string // spinner frame, empty when idle
}

func RenderStatus(s Status, width int) string {
	parts := make([]string, 0, 4)
	if s.Profile != "" {
		parts = append(parts, "profile: "+s.Profile)
	}
	if s.Persona != "" {
		parts = append(parts, "persona: "+s.Persona)
	}
	if s.Subject != "" {
		parts = append(parts, "signed in as "+s.Subject)
	}
	state := s.State
	if s.Activity != "" {
		state = s.Activity + " " + state
	}
	if state != "" {
		parts = append(parts, state)
	}
	return styles.StatusStyle(width).Render(strings.Join(parts, " · "))
}
