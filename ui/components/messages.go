package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/Rorical/katabasis/internal/models"
	"github.com/Rorical/katabasis/ui/styles"
)

// EmptyTranscript is shown instead of an empty transcript.
const EmptyTranscript = "Start your conversation with your other self..."

// NewMarkdownRenderer returns nil when glamour cannot be set up; agent
// replies are then word-wrapped as plain text.
func NewMarkdownRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func RenderMessages(messages []models.Message, width int, md *glamour.TermRenderer) string {
	if len(messages) == 0 {
		return styles.PlaceholderStyle().Render(EmptyTranscript)
	}

	var b strings.Builder
	userStyle := styles.UserStyle()
	agentStyle := styles.AgentStyle()
	// border, padding and margin of the message styles
	textWidth := width - 6
	if textWidth < 10 {
		textWidth = 10
	}

	for _, msg := range messages {
		switch msg.Origin {
		case models.User:
			b.WriteString(userStyle.Render(wordwrap.String("You: "+msg.Content, textWidth)) + "\n\n")
		case models.Agent:
			b.WriteString(agentStyle.Render(renderReply(msg.Content, textWidth, md)) + "\n\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderReply(content string, width int, md *glamour.TermRenderer) string {
	if md != nil {
		if out, err := md.Render(content); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return wordwrap.String(content, width)
}
