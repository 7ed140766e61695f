package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rorical/katabasis/internal/app"
	"github.com/Rorical/katabasis/internal/core"
	"github.com/Rorical/katabasis/internal/models"
	"github.com/Rorical/katabasis/internal/session"
)

var errNotLoggedIn = errors.New("not logged in, run `katabasis login` first")

var plain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the chat",
	Long: `Start the interactive chat. With --plain, read one message per line
from stdin and print each reply, which also works when piping.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if plain {
			return runPlainChat(cmd)
		}
		return launchTUI(cmd.Context())
	},
}

var sayCmd = &cobra.Command{
	Use:   "say <message>",
	Short: "Send a single message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(false)
		if err != nil {
			return err
		}
		defer closeRuntime(rt)

		conv, err := newPlainConversation(rt, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return sendLine(cmd, conv, strings.Join(args, " "))
	},
}

func init() {
	chatCmd.Flags().BoolVar(&plain, "plain", false, "line-based chat without the full-screen interface")
}

func newPlainConversation(rt *app.Runtime, errOut io.Writer) (*core.Conversation, error) {
	if session.Guard(rt.Session) != models.ViewChat {
		return nil, errNotLoggedIn
	}
	return core.NewConversation(rt.Client, rt.Session, printEffects{out: errOut},
		core.WithPersona(rt.Profile.Persona),
		core.WithConversationLogger(rt.Log),
	), nil
}

// sendLine runs one turn and prints the agent's reply.
func sendLine(cmd *cobra.Command, conv *core.Conversation, text string) error {
	before := conv.Transcript().Len()
	switch conv.SubmitTurn(cmd.Context(), text) {
	case core.TurnAnswered:
		for _, msg := range conv.Transcript().Since(before) {
			if msg.Origin == models.Agent {
				fmt.Fprintln(cmd.OutOrStdout(), msg.Content)
			}
		}
		return nil
	case core.TurnInvalidated:
		return errNotLoggedIn
	case core.TurnFailed:
		return errors.New("message not sent")
	default:
		return nil
	}
}

func runPlainChat(cmd *cobra.Command) error {
	rt, err := openRuntime(false)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	conv, err := newPlainConversation(rt, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			return nil
		}
		err := sendLine(cmd, conv, line)
		if errors.Is(err, errNotLoggedIn) {
			return err
		}
		// a failed turn was already reported, keep reading
	}
	return scanner.Err()
}
