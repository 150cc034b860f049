package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradegame/internal/app"
	"github.com/rustyeddy/tradegame/market"
	"github.com/rustyeddy/tradegame/market/data"
	"github.com/rustyeddy/tradegame/sim"
)

func newFetchCmd(rc *RootConfig) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Resolve price history for every configured instrument",
		Long: `Load each instrument through the configured data source and print what
was found. With --out the series are also saved as CSV files named after
the instrument symbol, ready for the csv data source.

Example:
  tradegame fetch -c game.yaml --out ./data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.load()
			if err != nil {
				return err
			}
			roster, err := cfg.Roster()
			if err != nil {
				return err
			}
			provider, err := app.OpenProvider(cfg.Data, roster)
			if err != nil {
				return err
			}
			if out != "" {
				if err := os.MkdirAll(out, 0755); err != nil {
					return err
				}
			}

			years := cfg.SimConfig().HistoryYears
			if years == 0 {
				years = sim.DefaultHistoryYears
			}
			w := cmd.OutOrStdout()
			for _, in := range roster.Instruments() {
				s, err := provider.Fetch(cmd.Context(), market.FetchRequest{Instrument: in.Name, Years: years})
				if err != nil {
					return fmt.Errorf("fetch %s: %w", in.Name, err)
				}
				if s.Len() == 0 {
					fmt.Fprintf(w, "%-12s %-12s no data\n", in.Name, in.Symbol)
					continue
				}
				fmt.Fprintf(w, "%-12s %-12s %5d bars  %s %.4f .. %s %.4f\n",
					in.Name, in.Symbol, s.Len(),
					s.First().Time.Format("2006-01-02"), s.First().Close,
					s.Last().Time.Format("2006-01-02"), s.Last().Close)

				if out != "" {
					if err := writeSeries(filepath.Join(out, in.Symbol+".csv"), s); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Directory to write <symbol>.csv files to")
	return cmd
}

func writeSeries(path string, s market.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := data.WriteCSV(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
