package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradegame/journal"
	"github.com/rustyeddy/tradegame/market"
)

var start = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

type testJournal struct {
	mu     sync.Mutex
	txs    []journal.Transaction
	equity []journal.EquitySnapshot
	fail   bool
}

func (j *testJournal) RecordTransaction(rec journal.Transaction) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return errors.New("disk full")
	}
	j.txs = append(j.txs, rec)
	return nil
}

func (j *testJournal) RecordEquity(rec journal.EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return errors.New("disk full")
	}
	j.equity = append(j.equity, rec)
	return nil
}

func (j *testJournal) Close() error { return nil }

// ramp returns n closes starting at 100 and rising 0.25 a day, so day d
// trades at 100 + (d-1)*0.25. Day 30 trades at 107.25.
func ramp(n int) market.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.25
	}
	return market.FromCloses(start, closes...)
}

func flat(n int, price float64) market.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return market.FromCloses(start, closes...)
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newEngine(t *testing.T, cfg Config, series map[string]market.Series, opts ...Option) *Engine {
	t.Helper()

	p := market.NewStaticProvider()
	var names []string
	for name, s := range series {
		p.Set(name, s)
		names = append(names, name)
	}

	opts = append([]Option{WithLogger(quiet)}, opts...)
	e, err := NewEngine(context.Background(), names, p, cfg, opts...)
	require.NoError(t, err)
	return e
}

func acme(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	return newEngine(t, Config{}, map[string]market.Series{"ACME": ramp(150)}, opts...)
}

func TestNewEngineDefaults(t *testing.T) {
	t.Parallel()

	e := acme(t)

	cfg := e.Config()
	assert.Equal(t, 1000.0, cfg.InitialFunds)
	assert.Equal(t, 3, cfg.HistoryYears)
	assert.Equal(t, 30, cfg.InitialDay)
	assert.Equal(t, 30, cfg.SalaryPeriodDays)
	assert.Equal(t, 1000.0, cfg.SalaryAmount)

	assert.Equal(t, []string{"ACME"}, e.Instruments())
	assert.Equal(t, 150, e.Horizon())
}

func TestNewEnginePassesHistoryYears(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var reqs []market.FetchRequest
	p := market.ProviderFunc(func(ctx context.Context, req market.FetchRequest) (market.Series, error) {
		mu.Lock()
		reqs = append(reqs, req)
		mu.Unlock()
		return ramp(40), nil
	})

	e, err := NewEngine(context.Background(), []string{"A", "B", "C"}, p, Config{HistoryYears: 5}, WithLogger(quiet))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, e.Instruments())

	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.Equal(t, 5, r.Years)
	}
}

func TestNewEngineHorizonIsShortestSeries(t *testing.T) {
	t.Parallel()

	e := newEngine(t, Config{}, map[string]market.Series{
		"ACME": ramp(150),
		"BETA": flat(90, 5),
	})
	assert.Equal(t, 90, e.Horizon())
}

func TestNewEngineDataUnavailable(t *testing.T) {
	t.Parallel()

	boom := errors.New("provider unreachable")

	tests := []struct {
		name        string
		instruments []string
		provider    market.SeriesProvider
		cause       error
	}{
		{
			name:        "provider error",
			instruments: []string{"ACME"},
			provider: market.ProviderFunc(func(ctx context.Context, req market.FetchRequest) (market.Series, error) {
				return nil, boom
			}),
			cause: boom,
		},
		{
			name:        "unknown instrument",
			instruments: []string{"NOPE"},
			provider:    market.NewStaticProvider(),
			cause:       market.ErrUnknownInstrument,
		},
		{
			name:        "series shorter than initial day",
			instruments: []string{"ACME"},
			provider: market.ProviderFunc(func(ctx context.Context, req market.FetchRequest) (market.Series, error) {
				return ramp(29), nil
			}),
		},
		{
			name:        "non-positive close",
			instruments: []string{"ACME"},
			provider: market.ProviderFunc(func(ctx context.Context, req market.FetchRequest) (market.Series, error) {
				s := ramp(40)
				s[10].Close = 0
				return s, nil
			}),
		},
		{
			name:        "no instruments",
			instruments: nil,
			provider:    market.NewStaticProvider(),
		},
		{
			name:        "duplicate instrument",
			instruments: []string{"ACME", "ACME"},
			provider:    market.NewStaticProvider(),
		},
		{
			name:        "nil provider",
			instruments: []string{"ACME"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(context.Background(), tt.instruments, tt.provider, Config{}, WithLogger(quiet))
			require.Error(t, err)
			assert.Nil(t, e)
			assert.True(t, errors.Is(err, ErrDataUnavailable), "got %v", err)
			if tt.cause != nil {
				assert.True(t, errors.Is(err, tt.cause), "got %v", err)
			}
		})
	}
}

func TestNewEngineOneFailureFailsAll(t *testing.T) {
	t.Parallel()

	p := market.NewStaticProvider()
	p.Set("ACME", ramp(100))

	_, err := NewEngine(context.Background(), []string{"ACME", "MISSING"}, p, Config{}, WithLogger(quiet))
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestNewEngineCanceled(t *testing.T) {
	t.Parallel()

	p := market.NewStaticProvider()
	p.Set("ACME", ramp(100))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(ctx, []string{"ACME"}, p, Config{}, WithLogger(quiet))
	assert.True(t, errors.Is(err, ErrDataUnavailable))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewEngineInvalidConfig(t *testing.T) {
	t.Parallel()

	p := market.NewStaticProvider()
	p.Set("ACME", ramp(100))

	_, err := NewEngine(context.Background(), []string{"ACME"}, p, Config{SalaryAmount: -1}, WithLogger(quiet))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salary_amount")
}

func TestPriceDayConvention(t *testing.T) {
	t.Parallel()

	e := acme(t)

	p, err := e.Price("ACME", 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p)

	p, err = e.Price("ACME", 30)
	require.NoError(t, err)
	assert.Equal(t, 107.25, p)

	p, err = e.Price("ACME", 150)
	require.NoError(t, err)
	assert.Equal(t, 137.25, p)

	_, err = e.Price("ACME", 0)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = e.Price("ACME", -3)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = e.Price("ACME", 151)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = e.Price("NOPE", 1)
	assert.True(t, errors.Is(err, ErrUnknownInstrument))
}

func TestLedgerCreatedLazilyWithDefaults(t *testing.T) {
	t.Parallel()

	e := acme(t)
	assert.Empty(t, e.Players())

	snap := e.Snapshot("alice")
	assert.Equal(t, LedgerSnapshot{
		Player:        "alice",
		Funds:         1000,
		Holdings:      map[string]int{"ACME": 0},
		Day:           30,
		LastSalaryDay: 30,
	}, snap)

	require.NoError(t, e.Buy("alice", "ACME", 1))
	_ = e.Snapshot("bob")
	assert.Equal(t, []string{"alice", "bob"}, e.Players())

	// alice's ledger was not recreated
	assert.Equal(t, 1, e.Holding("alice", "ACME"))
	assert.Equal(t, 0, e.Holding("bob", "ACME"))
}

func TestLedgerCreatedOnceUnderContention(t *testing.T) {
	t.Parallel()

	e := acme(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Buy("alice", "ACME", 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"alice"}, e.Players())
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	e := acme(t)
	snap := e.Snapshot("alice")
	snap.Holdings["ACME"] = 99

	assert.Equal(t, 0, e.Holding("alice", "ACME"))
	h := e.Holdings("alice")
	h["ACME"] = 5
	assert.Equal(t, 0, e.Holding("alice", "ACME"))
}
