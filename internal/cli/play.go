package cli

import (
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradegame/internal/app"
	"github.com/rustyeddy/tradegame/internal/repl"
	"github.com/rustyeddy/tradegame/journal"
)

func newPlayCmd(rc *RootConfig) *cobra.Command {
	var player string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the game interactively",
		Long: `Start an interactive session. Type help at the prompt for commands.

Example:
  tradegame play -c game.yaml --player alice
  tradegame play --demo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.load()
			if err != nil {
				return err
			}
			if player != "" {
				cfg.Game.Player = player
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := app.New(ctx, cfg, rc.logger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer a.Close()

			s := &repl.Session{
				Engine: a.Engine,
				Player: cfg.Game.Player,
				In:     cmd.InOrStdin(),
				Out:    cmd.OutOrStdout(),
			}
			if db, ok := a.Journal.(*journal.SQLite); ok {
				s.Report = func(w io.Writer) error {
					r, err := db.Report(cfg.Game.Player)
					if err != nil {
						return err
					}
					return r.WriteOrg(w)
				}
			}
			return s.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&player, "player", "p", "", "Player name (overrides game.player)")
	return cmd
}
