package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradegame/journal"
)

func newReportCmd(rc *RootConfig) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "report [player...]",
		Short: "Print an Org-mode report from the SQLite journal",
		Long: `Summarise journaled games. Without arguments every player in the
journal is reported.

Example:
  tradegame report --db ./tradegame.sqlite alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := rc.load()
				if err != nil {
					return err
				}
				dbPath = cfg.Journal.DBPath
			}
			if dbPath == "" {
				return fmt.Errorf("no journal database; pass --db")
			}

			j, err := journal.NewSQLite(dbPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer j.Close()

			players := args
			if len(players) == 0 {
				if players, err = j.Players(); err != nil {
					return fmt.Errorf("list players: %w", err)
				}
			}

			for _, p := range players {
				r, err := j.Report(p)
				if err != nil {
					return fmt.Errorf("report %s: %w", p, err)
				}
				if err := r.WriteOrg(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dbPath, "db", "d", "", "SQLite journal (default journal.db_path from config)")
	return cmd
}
