package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradegame/config"
	"github.com/rustyeddy/tradegame/internal/logging"
)

// RootConfig carries the persistent flags every subcommand sees.
type RootConfig struct {
	ConfigPath string
	LogLevel   string
	Demo       bool
}

// load reads the config file, or the defaults when no file is given, and
// applies the global flag overrides.
func (rc *RootConfig) load() (*config.Config, error) {
	var cfg *config.Config
	if rc.ConfigPath == "" {
		cfg = config.Default()
	} else {
		var err error
		if cfg, err = config.LoadFromFile(rc.ConfigPath); err != nil {
			return nil, err
		}
	}
	if rc.LogLevel != "" {
		cfg.Log.Level = rc.LogLevel
	}
	if rc.Demo {
		cfg.Data.Source = config.SourceStatic
	}
	return cfg, cfg.Validate()
}

func (rc *RootConfig) logger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.New(cfg.Log, w)
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:   "tradegame",
		Short: "Tradegame: a stock trading game over real price history",
		Long: `Tradegame drops you into the past with some cash and a salary.
Each day you may buy or sell shares at that day's close, then move time
forward and watch what your choices were worth.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&rc.ConfigPath, "config", "c", "", "Path to config file (YAML or JSON); defaults apply when empty")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&rc.Demo, "demo", false, "Play on generated prices instead of the configured data source")

	cmd.AddCommand(
		newPlayCmd(rc),
		newServeCmd(rc),
		newFetchCmd(rc),
		newReportCmd(rc),
		newConfigCmd(rc),
		newVersionCmd(),
	)

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
