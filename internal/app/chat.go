package app

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/katabasis/internal/core"
	"github.com/Rorical/katabasis/internal/update"
	"github.com/Rorical/katabasis/ui/components"
	"github.com/Rorical/katabasis/ui/styles"
)

const (
	confirmTitle = "Are you ready to die?"
	confirmBody  = "This action cannot be undone. You will cease to exist."
)

// chatView exists only while the session guard lets the user in. Its
// conversation, and with it the transcript, is dropped on leaving.
type chatView struct {
	conv    *core.Conversation
	account *core.AccountController
	subject string

	input    textinput.Model
	viewport viewport.Model
	md       *glamour.TermRenderer
	mdWidth  int
}

func newChatView(conv *core.Conversation, account *core.AccountController, subject string, layout update.Layout) *chatView {
	ti := textinput.New()
	ti.Placeholder = "Speak to your other self... (enter to send)"
	ti.Prompt = "│ "
	ti.CharLimit = 4096

	v := &chatView{
		conv:     conv,
		account:  account,
		subject:  subject,
		input:    ti,
		viewport: viewport.New(layout.ContentWidth(), layout.TranscriptHeight()),
	}
	v.resize(layout)
	return v
}

func (v *chatView) resize(layout update.Layout) {
	width := layout.ContentWidth()
	v.viewport.Width = width
	v.viewport.Height = layout.TranscriptHeight()
	v.input.Width = width - 4
	if v.md == nil || v.mdWidth != width {
		v.md = components.NewMarkdownRenderer(width - 8)
		v.mdWidth = width
	}
	v.refresh()
}

// refresh re-renders the transcript and scrolls to the newest entry.
func (v *chatView) refresh() {
	entries := v.conv.Transcript().Entries()
	v.viewport.SetContent(components.RenderMessages(entries, v.viewport.Width, v.md))
	v.viewport.GotoBottom()
}

func (v *chatView) state() string {
	switch {
	case v.account.Deleting():
		return "Deleting account"
	case v.conv.Pending():
		return "Processing"
	default:
		return "Ready"
	}
}

func (v *chatView) view(layout update.Layout, status components.Status) string {
	width := layout.ContentWidth()
	if v.account.ConfirmOpen() {
		hint := "y confirm · n cancel"
		if v.account.Deleting() {
			hint = status.Activity + " Deleting account..."
		}
		return components.RenderModal(components.Modal{
			Title:     confirmTitle,
			Body:      confirmBody,
			Hint:      hint,
			Dangerous: true,
		}, layout.Width, layout.Height)
	}

	header := styles.HeaderStyle(layout.Width).Render("katabasis · " + v.conv.Persona())
	input := components.RenderInput(v.input.View(), v.conv.Pending(), width)

	status.State = v.state()
	status.Subject = v.subject
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		v.viewport.View(),
		input,
		components.RenderStatus(status, layout.Width),
	)
}
