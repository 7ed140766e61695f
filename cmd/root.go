package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Rorical/katabasis/internal/app"
	"github.com/Rorical/katabasis/internal/config"
	"github.com/Rorical/katabasis/internal/logging"
)

var (
	profileName string
	verbose     bool
	ephemeral   bool
)

var rootCmd = &cobra.Command{
	Use:   "katabasis",
	Short: "Talk to your other self",
	Long: `katabasis is a terminal client for a conversational backend.

Run without arguments to log in and start the interactive chat. When stdin
is not a terminal it falls back to the line-based chat.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return runPlainChat(cmd)
		}
		return launchTUI(cmd.Context())
	},
}

func Execute() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use instead of the active one")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep credentials in memory only")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(deleteAccountCmd)
	rootCmd.AddCommand(devserverCmd)
}

// loadConfig applies --profile on top of the config file and environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if profileName != "" {
		if err := cfg.Use(profileName); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openRuntime builds the logger and opens the current profile. The TUI owns
// the terminal, so interactive runs log to a file instead of stderr.
func openRuntime(interactive bool) (*app.Runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts := logging.Options{Verbose: verbose}
	if interactive {
		opts.Dir = cfg.Dir()
	}
	log, err := logging.New(opts)
	if err != nil {
		return nil, err
	}
	rt, err := app.OpenRuntime(cfg, log, ephemeral)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return rt, nil
}

func closeRuntime(rt *app.Runtime) {
	if err := rt.Close(); err != nil {
		rt.Log.Warn("closing credential store", zap.Error(err))
	}
	_ = rt.Log.Sync()
}

// launchTUI starts the full-screen chat; tests replace it.
var launchTUI = runTUI

func runTUI(ctx context.Context) error {
	rt, err := openRuntime(true)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	application := app.NewApplication(ctx, rt)
	defer application.Stop()

	if err := application.Start(); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}
