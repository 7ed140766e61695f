package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/katabasis/internal/core"
	"github.com/Rorical/katabasis/internal/eventbus"
)

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// TurnFinishedMsg reports the end of a chat turn started with ExchangeCmd.
type TurnFinishedMsg struct {
	MessageID uint64
	Outcome   core.TurnOutcome
}

type LoginFinishedMsg struct {
	Err error
}

type SignupFinishedMsg struct {
	Err error
}

type TerminationFinishedMsg struct {
	Err error
}

// ExchangeCmd sends an accepted turn off the UI goroutine.
func ExchangeCmd(ctx context.Context, turn *core.Turn) tea.Cmd {
	return func() tea.Msg {
		outcome := turn.Exchange(ctx)
		return TurnFinishedMsg{MessageID: turn.Message().ID, Outcome: outcome}
	}
}

func LoginCmd(ctx context.Context, auth *core.Authenticator, username, password string) tea.Cmd {
	return func() tea.Msg {
		return LoginFinishedMsg{Err: auth.Login(ctx, username, password)}
	}
}

func SignupCmd(ctx context.Context, auth *core.Authenticator, form core.SignupForm) tea.Cmd {
	return func() tea.Msg {
		return SignupFinishedMsg{Err: auth.Signup(ctx, form)}
	}
}

func TerminateCmd(ctx context.Context, t *core.Termination) tea.Cmd {
	return func() tea.Msg {
		return TerminationFinishedMsg{Err: t.Run(ctx)}
	}
}
