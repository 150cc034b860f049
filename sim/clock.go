package sim

import (
	"fmt"

	"github.com/rustyeddy/tradegame/journal"
)

// AdvanceDays moves player n simulated days forward and pays any salary
// that came due. Every full SalaryPeriodDays since the last payday credits
// SalaryAmount; leftover days carry into the next period. It returns the
// total credited. n <= 0 does nothing. Advancing past the engine horizon
// fails with ErrOutOfRange and leaves the ledger unchanged.
func (e *Engine) AdvanceDays(player string, n int) (float64, error) {
	if n <= 0 {
		return 0, nil
	}

	l := e.ledgers.get(player)
	var (
		credited float64
		txs      []journal.Transaction
		equity   journal.EquitySnapshot
		valued   bool
	)
	err := l.locked(func() error {
		// written as a difference so a huge n cannot overflow past the check
		if n > e.horizon-l.day {
			return fmt.Errorf("advance %d days from day %d: %w (last day %d)", n, l.day, ErrOutOfRange, e.horizon)
		}

		l.day += n

		period := e.cfg.SalaryPeriodDays
		periods := (l.day - l.lastSalaryDay) / period
		if periods > 0 {
			before := l.funds
			paidFrom := l.lastSalaryDay

			credited = float64(periods) * e.cfg.SalaryAmount
			l.funds += credited
			l.lastSalaryDay += periods * period

			now := e.now()
			txs = make([]journal.Transaction, 0, periods)
			for i := 1; i <= periods; i++ {
				txs = append(txs, e.stamp(journal.Transaction{
					Player:     player,
					Kind:       journal.KindSalary,
					Amount:     e.cfg.SalaryAmount,
					Day:        paidFrom + i*period,
					FundsAfter: before + float64(i)*e.cfg.SalaryAmount,
					Time:       now,
				}))
			}
			e.log.Info("salary paid", "player", player, "periods", periods, "amount", credited, "day", l.day)
		}

		equity, valued = e.equityLocked(l)
		return nil
	})
	if err != nil {
		return 0, err
	}

	e.record(txs...)
	if valued {
		e.recordEquity(equity)
	}
	return credited, nil
}
