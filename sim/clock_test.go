package sim

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradegame/journal"
	"github.com/rustyeddy/tradegame/market"
)

func TestAdvanceDaysIsMonotonic(t *testing.T) {
	t.Parallel()

	e := acme(t)
	day := e.Day("alice")
	for _, n := range []int{1, 2, 7, 13, 30} {
		_, err := e.AdvanceDays("alice", n)
		require.NoError(t, err)
		assert.Equal(t, day+n, e.Day("alice"))
		day += n
	}
}

func TestAdvanceOnePeriodPaysOnce(t *testing.T) {
	t.Parallel()

	e := acme(t)

	credited, err := e.AdvanceDays("alice", 30)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, credited)
	assert.Equal(t, 2000.0, e.Funds("alice"))

	snap := e.Snapshot("alice")
	assert.Equal(t, 60, snap.Day)
	assert.Equal(t, 60, snap.LastSalaryDay)
}

func TestAdvanceAccruesMultiplePeriodsAndKeepsRemainder(t *testing.T) {
	t.Parallel()

	e := acme(t)

	credited, err := e.AdvanceDays("alice", 65)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, credited)
	assert.Equal(t, 3000.0, e.Funds("alice"))

	snap := e.Snapshot("alice")
	assert.Equal(t, 95, snap.Day)
	assert.Equal(t, 90, snap.LastSalaryDay)

	// 5 days carried over: 5 more is not yet a full period
	credited, err = e.AdvanceDays("alice", 5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, credited)
	assert.Equal(t, 3000.0, e.Funds("alice"))

	// ...but 20 more completes it, paying exactly once
	credited, err = e.AdvanceDays("alice", 20)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, credited)
	assert.Equal(t, 4000.0, e.Funds("alice"))
	assert.Equal(t, 120, e.Snapshot("alice").LastSalaryDay)
}

func TestAdvanceSmallStepsMatchOneJump(t *testing.T) {
	t.Parallel()

	a := acme(t)
	b := acme(t)

	_, err := a.AdvanceDays("p", 97)
	require.NoError(t, err)
	for i := 0; i < 97; i++ {
		_, err := b.AdvanceDays("p", 1)
		require.NoError(t, err)
	}
	assert.Equal(t, a.Snapshot("p"), b.Snapshot("p"))
	assert.Equal(t, 4000.0, a.Funds("p"))
}

func TestAdvanceCustomSalary(t *testing.T) {
	t.Parallel()

	e := newEngine(t, Config{InitialFunds: 500, InitialDay: 10, SalaryPeriodDays: 7, SalaryAmount: 25.5}, map[string]market.Series{"ACME": ramp(100)})

	credited, err := e.AdvanceDays("p", 22)
	require.NoError(t, err)
	assert.Equal(t, 76.5, credited)
	assert.Equal(t, 576.5, e.Funds("p"))
	assert.Equal(t, 31, e.Snapshot("p").LastSalaryDay)
}

func TestAdvanceNonPositiveIsNoOp(t *testing.T) {
	t.Parallel()

	j := &testJournal{}
	e := acme(t, WithJournal(j))
	before := e.Snapshot("alice")

	for _, n := range []int{0, -1, -30} {
		credited, err := e.AdvanceDays("alice", n)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, credited)
	}
	assert.Equal(t, before, e.Snapshot("alice"))
	assert.Empty(t, j.txs)
	assert.Empty(t, j.equity)
}

func TestAdvancePastHorizon(t *testing.T) {
	t.Parallel()

	e := acme(t)

	before := e.Snapshot("alice")
	_, err := e.AdvanceDays("alice", 121)
	assert.True(t, errors.Is(err, ErrOutOfRange), "got %v", err)
	assert.Equal(t, before, e.Snapshot("alice"))

	_, err = e.AdvanceDays("alice", 120)
	require.NoError(t, err)
	assert.Equal(t, 150, e.Day("alice"))

	// the last day is still priced
	p, err := e.CurrentPrice("alice", "ACME")
	require.NoError(t, err)
	assert.Equal(t, 137.25, p)

	_, err = e.AdvanceDays("alice", 1)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestAdvanceHugeCountIsOutOfRange(t *testing.T) {
	t.Parallel()

	j := &testJournal{}
	e := newEngine(t, Config{}, map[string]market.Series{"ACME": ramp(40)}, WithJournal(j))
	before := e.Snapshot("p")

	for _, n := range []int{math.MaxInt, math.MaxInt - 29, math.MaxInt / 2} {
		credited, err := e.AdvanceDays("p", n)
		assert.True(t, errors.Is(err, ErrOutOfRange), "n=%d: got %v", n, err)
		assert.Zero(t, credited)
	}
	assert.Equal(t, before, e.Snapshot("p"))
	assert.Empty(t, j.txs)
}

func TestAdvanceJournalsSalaryAndEquity(t *testing.T) {
	t.Parallel()

	j := &testJournal{}
	e := acme(t, WithJournal(j))
	require.NoError(t, e.Buy("alice", "ACME", 2)) // 214.5 -> 215

	_, err := e.AdvanceDays("alice", 65)
	require.NoError(t, err)

	require.Len(t, j.txs, 3)
	assert.Equal(t, journal.KindBuy, j.txs[0].Kind)

	for i, tx := range j.txs[1:] {
		assert.Equal(t, journal.KindSalary, tx.Kind)
		assert.Equal(t, 1000.0, tx.Amount)
		assert.Equal(t, 60+30*i, tx.Day)
	}
	assert.Equal(t, 1785.0, j.txs[1].FundsAfter)
	assert.Equal(t, 2785.0, j.txs[2].FundsAfter)

	require.Len(t, j.equity, 1)
	eq := j.equity[0]
	assert.Equal(t, 95, eq.Day)
	assert.Equal(t, 2785.0, eq.Funds)
	// day 95 trades at 100 + 94*0.25 = 123.5
	assert.Equal(t, 247.0, eq.StockValue)
	assert.Equal(t, 3032.0, eq.TotalValue)
}

// reentrantJournal reads the ledger back from inside every journal call,
// which deadlocks if the engine still holds the player's lock.
type reentrantJournal struct {
	testJournal
	e *Engine
}

func (j *reentrantJournal) RecordTransaction(rec journal.Transaction) error {
	j.e.Snapshot(rec.Player)
	return j.testJournal.RecordTransaction(rec)
}

func (j *reentrantJournal) RecordEquity(rec journal.EquitySnapshot) error {
	j.e.Snapshot(rec.Player)
	return j.testJournal.RecordEquity(rec)
}

func TestJournalWritesHappenOutsideLedgerLock(t *testing.T) {
	t.Parallel()

	j := &reentrantJournal{}
	e := acme(t, WithJournal(j))
	j.e = e

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, e.Buy("alice", "ACME", 2))
		assert.NoError(t, e.Sell("alice", "ACME", 1))
		_, err := e.AdvanceDays("alice", 30)
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("journal write blocked on the ledger lock")
	}
	assert.Len(t, j.txs, 3)
	assert.Len(t, j.equity, 1)
}
