package sim

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/tradegame/internal/id"
	"github.com/rustyeddy/tradegame/journal"
	"github.com/rustyeddy/tradegame/market"
)

// Engine owns every player ledger and the cached price history. It never
// performs I/O after construction and only moves when a caller invokes it.
type Engine struct {
	cfg         Config
	instruments []string
	series      map[string]market.Series
	horizon     int

	ledgers *ledgerStore
	journal journal.Journal
	log     *slog.Logger
	now     func() time.Time
}

type Option func(*Engine)

// WithJournal records every transaction and equity snapshot to j.
func WithJournal(j journal.Journal) Option {
	return func(e *Engine) {
		if j != nil {
			e.journal = j
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock sets the wall clock used to stamp journal records.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine resolves the full price series of every instrument through
// provider and caches a private copy for the engine's lifetime. Series are fetched
// concurrently; ctx bounds the fetch and is not retained.
//
// Any failure, or a series shorter than cfg.InitialDay, yields an error
// wrapping ErrDataUnavailable and no engine.
func NewEngine(ctx context.Context, instruments []string, provider market.SeriesProvider, cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim config: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: no provider", ErrDataUnavailable)
	}
	if len(instruments) == 0 {
		return nil, fmt.Errorf("%w: no instruments", ErrDataUnavailable)
	}
	seen := make(map[string]bool, len(instruments))
	for _, in := range instruments {
		if seen[in] {
			return nil, fmt.Errorf("%w: duplicate instrument %q", ErrDataUnavailable, in)
		}
		seen[in] = true
	}

	loaded := make([]market.Series, len(instruments))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range instruments {
		g.Go(func() error {
			s, err := provider.Fetch(gctx, market.FetchRequest{Instrument: in, Years: cfg.HistoryYears})
			if err != nil {
				return fmt.Errorf("%w: %q: %w", ErrDataUnavailable, in, err)
			}
			if err := checkSeries(s, cfg.InitialDay); err != nil {
				return fmt.Errorf("%w: %q: %v", ErrDataUnavailable, in, err)
			}
			loaded[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		instruments: append([]string(nil), instruments...),
		series:      make(map[string]market.Series, len(instruments)),
		journal:     journal.Discard,
		log:         slog.Default(),
		now:         time.Now,
	}
	for i, in := range instruments {
		e.series[in] = slices.Clone(loaded[i])
		if e.horizon == 0 || loaded[i].Len() < e.horizon {
			e.horizon = loaded[i].Len()
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ledgers = newLedgerStore(e.newLedger)

	e.log.Info("engine ready",
		"instruments", len(e.instruments),
		"horizon", e.horizon,
		"initial_day", cfg.InitialDay,
	)
	return e, nil
}

// checkSeries requires at least minLen candles, all with a positive close.
func checkSeries(s market.Series, minLen int) error {
	if s.Len() < minLen {
		return fmt.Errorf("%d candles, need at least %d", s.Len(), minLen)
	}
	for i, c := range s {
		if c.Close <= 0 {
			return fmt.Errorf("non-positive close %v at index %d", c.Close, i)
		}
	}
	return nil
}

func (e *Engine) newLedger(player string) *ledger {
	h := make(map[string]int, len(e.instruments))
	for _, in := range e.instruments {
		h[in] = 0
	}
	e.log.Debug("new player", "player", player)
	return &ledger{
		player:        player,
		funds:         e.cfg.InitialFunds,
		holdings:      h,
		day:           e.cfg.InitialDay,
		lastSalaryDay: e.cfg.InitialDay,
	}
}

// Config returns the effective rules, defaults applied.
func (e *Engine) Config() Config { return e.cfg }

// Instruments returns the tradable instruments in roster order.
func (e *Engine) Instruments() []string {
	return append([]string(nil), e.instruments...)
}

// Horizon is the last simulated day every instrument has a price for.
func (e *Engine) Horizon() int { return e.horizon }

// Players lists every player referenced so far.
func (e *Engine) Players() []string { return e.ledgers.players() }

// Price returns the close of instrument for a 1-based simulated day: day 1
// reads the first cached candle. Trading on day D therefore settles at the
// close recorded for day D-1 of the underlying series.
func (e *Engine) Price(instrument string, day int) (float64, error) {
	s, ok := e.series[instrument]
	if !ok {
		return 0, fmt.Errorf("price: %w: %q", ErrUnknownInstrument, instrument)
	}
	if day < 1 || day > s.Len() {
		return 0, fmt.Errorf("price %s day %d: %w (have 1..%d)", instrument, day, ErrOutOfRange, s.Len())
	}
	return s.Close(day - 1), nil
}

// Snapshot returns a copy of player's ledger.
func (e *Engine) Snapshot(player string) LedgerSnapshot {
	l := e.ledgers.get(player)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (e *Engine) Funds(player string) float64 {
	l := e.ledgers.get(player)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.funds
}

// Holdings returns a copy of player's share counts per instrument.
func (e *Engine) Holdings(player string) map[string]int {
	return e.Snapshot(player).Holdings
}

func (e *Engine) Holding(player, instrument string) int {
	l := e.ledgers.get(player)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdings[instrument]
}

// Day returns player's current simulated day.
func (e *Engine) Day(player string) int {
	l := e.ledgers.get(player)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.day
}

// stamp gives tx its ID. It runs under the ledger lock so IDs sort in the
// order operations were applied.
func (e *Engine) stamp(tx journal.Transaction) journal.Transaction {
	tx.ID = id.NewAt(tx.Time)
	return tx
}

// record journals txs. It must be called after the ledger lock is released.
// Journal failures are logged and never fail or undo a ledger operation.
func (e *Engine) record(txs ...journal.Transaction) {
	for _, tx := range txs {
		if err := e.journal.RecordTransaction(tx); err != nil {
			e.log.Warn("journal transaction failed", "player", tx.Player, "kind", tx.Kind, "error", err)
		}
	}
}

// equityLocked values l for the journal. ok is false when l cannot be
// valued, which is logged.
func (e *Engine) equityLocked(l *ledger) (snap journal.EquitySnapshot, ok bool) {
	v, err := e.valuationLocked(l)
	if err != nil {
		e.log.Warn("valuation failed", "player", l.player, "error", err)
		return journal.EquitySnapshot{}, false
	}
	return journal.EquitySnapshot{
		Player:     l.player,
		Day:        v.Day,
		Funds:      v.Funds,
		StockValue: v.StockValue,
		TotalValue: v.TotalValue,
		Time:       e.now(),
	}, true
}

func (e *Engine) recordEquity(snap journal.EquitySnapshot) {
	if err := e.journal.RecordEquity(snap); err != nil {
		e.log.Warn("journal equity failed", "player", snap.Player, "error", err)
	}
}
