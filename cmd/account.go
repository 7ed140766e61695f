package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/katabasis/internal/core"
	"github.com/Rorical/katabasis/internal/models"
	"github.com/Rorical/katabasis/internal/session"
)

var assumeYes bool

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Permanently delete your account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(false)
		if err != nil {
			return err
		}
		defer closeRuntime(rt)

		if session.Guard(rt.Session) != models.ViewChat {
			return errNotLoggedIn
		}

		account := core.NewAccountController(rt.Client, rt.Session, printEffects{out: cmd.ErrOrStderr()}, rt.Log)
		account.RequestTermination()

		if !assumeYes {
			ok, err := prompts.Confirm("Are you ready to die? This action cannot be undone")
			if err != nil || !ok {
				account.CancelTermination()
			}
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
				return nil
			}
		}

		if err := account.ConfirmTermination(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Account deleted")
		return nil
	},
}

func init() {
	deleteAccountCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
}
