package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/katabasis/internal/core"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(false)
		if err != nil {
			return err
		}
		defer closeRuntime(rt)

		username := loginUsername
		if username == "" {
			if username, err = prompts.Ask("Username", "", 0, nil); err != nil {
				return err
			}
		}
		password, err := prompts.Ask("Password", "", '*', nil)
		if err != nil {
			return err
		}

		auth := core.NewAuthenticator(rt.Client, rt.Session, printEffects{out: cmd.ErrOrStderr()}, rt.Log)
		if err := auth.Login(cmd.Context(), username, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (profile %s)\n", username, rt.ProfileName)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(false)
		if err != nil {
			return err
		}
		defer closeRuntime(rt)

		var form core.SignupForm
		fields := []struct {
			label  string
			target *string
			mask   rune
		}{
			{"Username", &form.Username, 0},
			{"Email", &form.Email, 0},
			{"Password", &form.Password, '*'},
			{"Confirm password", &form.ConfirmPassword, '*'},
		}
		for _, f := range fields {
			v, err := prompts.Ask(f.label, "", f.mask, nil)
			if err != nil {
				return err
			}
			*f.target = v
		}

		auth := core.NewAuthenticator(rt.Client, rt.Session, nil, rt.Log)
		if err := auth.Signup(cmd.Context(), form); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run `katabasis login` to sign in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(false)
		if err != nil {
			return err
		}
		defer closeRuntime(rt)

		auth := core.NewAuthenticator(rt.Client, rt.Session, nil, rt.Log)
		if err := auth.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username (prompted when empty)")
}
