package update

import (
	tea "github.com/charmbracelet/bubbletea"
)

const (
	headerHeight = 2
	inputHeight  = 3
	statusHeight = 1

	minTranscriptHeight = 3
	minWidth            = 20
)

// Layout is the terminal size the views are laid out against.
type Layout struct {
	Width  int
	Height int
}

func HandleWindowSizeMsg(layout *Layout, sizeMsg tea.WindowSizeMsg) {
	layout.Width = sizeMsg.Width
	layout.Height = sizeMsg.Height
}

// ContentWidth is the width available inside bordered boxes.
func (l Layout) ContentWidth() int {
	if l.Width-4 < minWidth {
		return minWidth
	}
	return l.Width - 4
}

// TranscriptHeight is what is left for the transcript once the header, the
// input box and the status bar are drawn.
func (l Layout) TranscriptHeight() int {
	h := l.Height - headerHeight - inputHeight - statusHeight
	if h < minTranscriptHeight {
		return minTranscriptHeight
	}
	return h
}
