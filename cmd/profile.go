package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rorical/katabasis/internal/config"
	"github.com/Rorical/katabasis/internal/credential"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage backend profiles",
	Long:  `Manage profiles for different backends, personas and credential stores.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Fprintln(out, "Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Fprintf(out, "  %s%s\n", name, marker)
			fmt.Fprintf(out, "    Base URL: %s\n", cfg.Profiles[name].BaseURL)
			if p := cfg.Profiles[name].Persona; p != "" {
				fmt.Fprintf(out, "    Persona: %s\n", p)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			if err := cfg.Use(args[0]); err != nil {
				return err
			}
		}

		// Current applies env overrides, which is what a run would use
		profile := cfg.Current()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile: %s\n", cfg.CurrentName())
		fmt.Fprintf(out, "Base URL: %s\n", profile.BaseURL)
		fmt.Fprintf(out, "Persona: %s\n", profile.Persona)
		fmt.Fprintf(out, "Request timeout: %s\n", profile.RequestTimeout)
		fmt.Fprintf(out, "Credential store: %s (%s)\n", profile.CredentialStore, cfg.CredentialDir())
		return nil
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			if name, err = prompts.Ask("Profile name", "", 0, nil); err != nil {
				return err
			}
		}
		if _, exists := cfg.Profiles[name]; exists {
			return fmt.Errorf("profile '%s' already exists", name)
		}

		profile, err := promptProfile(config.DefaultProfile())
		if err != nil {
			return err
		}
		if err := cfg.AddProfile(name, profile); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' added successfully!\n", name)
		return nil
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		name, err := selectProfile(cfg, args, "Select profile to edit", "")
		if err != nil {
			return err
		}
		current, exists := cfg.Profiles[name]
		if !exists {
			return fmt.Errorf("profile '%s' does not exist", name)
		}

		profile, err := promptProfile(current)
		if err != nil {
			return err
		}
		if err := cfg.UpdateProfile(name, profile); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' updated successfully!\n", name)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		name, err := selectProfile(cfg, args, "Select profile to delete", "")
		if err != nil {
			return err
		}
		if _, exists := cfg.Profiles[name]; !exists {
			return fmt.Errorf("profile '%s' does not exist", name)
		}

		ok, err := prompts.Confirm(fmt.Sprintf("Delete profile '%s'", name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
			return nil
		}

		if err := cfg.DeleteProfile(name); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' deleted successfully!\n", name)
		return nil
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) == 0 && len(cfg.Profiles) < 2 {
			fmt.Fprintln(cmd.OutOrStdout(), "No other profiles available to switch to")
			return nil
		}

		name, err := selectProfile(cfg, args, "Select profile to switch to", cfg.ActiveProfile)
		if err != nil {
			return err
		}
		if err := cfg.SetActive(name); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile '%s'\n", name)
		return nil
	},
}

// selectProfile takes the name from args or lets the user pick one, leaving
// out exclude.
func selectProfile(cfg *config.Config, args []string, label, exclude string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	names := make([]string, 0, len(cfg.Profiles))
	for _, name := range cfg.ProfileNames() {
		if name != exclude {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no profiles available")
	}

	return prompts.Choose(label, names, 0)
}

func promptProfile(p config.Profile) (config.Profile, error) {
	baseURL, err := prompts.Ask("Base URL", p.BaseURL, 0, func(s string) error {
		candidate := p
		candidate.BaseURL = s
		return candidate.Validate()
	})
	if err != nil {
		return p, err
	}
	p.BaseURL = baseURL

	if p.Persona, err = prompts.Ask("Persona", p.Persona, 0, nil); err != nil {
		return p, err
	}

	timeout := p.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	raw, err := prompts.Ask("Request timeout", timeout.String(), 0, func(s string) error {
		_, err := time.ParseDuration(s)
		return err
	})
	if err != nil {
		return p, err
	}
	if p.RequestTimeout, err = time.ParseDuration(raw); err != nil {
		return p, err
	}

	stores := []string{credential.BackendFile, credential.BackendSQLite}
	cursor := 0
	if p.CredentialStore == credential.BackendSQLite {
		cursor = 1
	}
	if p.CredentialStore, err = prompts.Choose("Credential store", stores, cursor); err != nil {
		return p, err
	}
	return p, nil
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
