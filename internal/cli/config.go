package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradegame/config"
)

func newConfigCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage game configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file`,
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd(rc))
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(w, "\nEdit the file and play with:")
			fmt.Fprintf(w, "  tradegame play -c %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "tradegame.yaml", "output config file path")
	return cmd
}

func newConfigValidateCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rc.ConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no config file given")
			}

			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(w, "  Player: %s\n", cfg.Game.Player)
			fmt.Fprintf(w, "  Instruments: %d\n", len(cfg.Instruments))
			fmt.Fprintf(w, "  Data: %s\n", cfg.Data.Source)
			fmt.Fprintf(w, "  Journal: %s\n", orNone(cfg.Journal.Type))
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return config.JournalNone
	}
	return s
}
