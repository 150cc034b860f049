// Package app turns a loaded configuration into a running engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rustyeddy/tradegame/config"
	"github.com/rustyeddy/tradegame/journal"
	"github.com/rustyeddy/tradegame/market"
	"github.com/rustyeddy/tradegame/market/data"
	"github.com/rustyeddy/tradegame/sim"
)

// App bundles an engine with the journal it writes to.
type App struct {
	Config  *config.Config
	Roster  market.Roster
	Engine  *sim.Engine
	Journal journal.Journal
	Log     *slog.Logger
}

// New loads every configured instrument and starts an engine. The caller
// must Close the app to flush the journal.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	roster, err := cfg.Roster()
	if err != nil {
		return nil, fmt.Errorf("instruments: %w", err)
	}

	provider, err := OpenProvider(cfg.Data, roster)
	if err != nil {
		return nil, err
	}

	j, err := OpenJournal(cfg.Journal)
	if err != nil {
		return nil, err
	}

	eng, err := sim.NewEngine(ctx, roster.Names(), provider, cfg.SimConfig(),
		sim.WithJournal(j),
		sim.WithLogger(log),
	)
	if err != nil {
		return nil, errors.Join(err, j.Close())
	}

	return &App{
		Config:  cfg,
		Roster:  roster,
		Engine:  eng,
		Journal: j,
		Log:     log,
	}, nil
}

func (a *App) Close() error {
	return a.Journal.Close()
}

// OpenProvider builds the series provider for the configured data source,
// rebasing prices when RelativeBase is set.
func OpenProvider(cfg config.DataConfig, roster market.Roster) (market.SeriesProvider, error) {
	var p market.SeriesProvider
	switch cfg.Source {
	case config.SourceCSV:
		p = data.NewCSVProvider(cfg.Dir, roster)
	case config.SourceHTTP:
		timeout, err := cfg.ParseTimeout()
		if err != nil {
			return nil, fmt.Errorf("data timeout: %w", err)
		}
		p = data.NewChartProvider(cfg.BaseURL, roster, cfg.RequestsPerMinute, timeout)
	case config.SourceStatic:
		p = DemoProvider(roster)
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}

	if cfg.RelativeBase > 0 {
		p = market.RelativeProvider{Next: p, Base: cfg.RelativeBase}
	}
	return p, nil
}

// OpenJournal opens the configured journal. An empty type or "none"
// journals nothing.
func OpenJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", config.JournalNone:
		return journal.Discard, nil
	case config.JournalCSV:
		j, err := journal.NewCSV(cfg.TransactionsFile, cfg.EquityFile)
		if err != nil {
			return nil, fmt.Errorf("create journal: %w", err)
		}
		return j, nil
	case config.JournalSQLite:
		j, err := journal.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("create journal: %w", err)
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}
