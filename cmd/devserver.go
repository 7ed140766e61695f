package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/katabasis/internal/devserver"
	"github.com/Rorical/katabasis/internal/logging"
)

var devAddr string

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local backend for development",
	Long: `Run an in-memory backend that implements the login, signup, chat and
account deletion endpoints. Replies come from OpenAI when OPENAI_API_KEY is
set and are echoed otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := devserver.LoadConfig()
		if err != nil {
			return err
		}
		if devAddr != "" {
			cfg.Addr = devAddr
		}

		log, err := logging.New(logging.Options{Verbose: verbose})
		if err != nil {
			return err
		}
		defer log.Sync()

		return devserver.Serve(cmd.Context(), cfg, log, func(addr string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", addr)
		})
	},
}

func init() {
	devserverCmd.Flags().StringVar(&devAddr, "addr", "", "listen address (default from KATABASIS_DEV_ADDR)")
}
