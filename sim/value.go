package sim

import (
	"fmt"
	"slices"

	"github.com/rustyeddy/tradegame/market"
)

// CurrentPrice is the price player would trade instrument at right now.
func (e *Engine) CurrentPrice(player, instrument string) (float64, error) {
	return e.Price(instrument, e.Day(player))
}

// StockValue is the sum of holdings marked at the player's current prices.
func (e *Engine) StockValue(player string) (float64, error) {
	v, err := e.Valuation(player)
	return v.StockValue, err
}

// TotalValue is StockValue plus funds.
func (e *Engine) TotalValue(player string) (float64, error) {
	v, err := e.Valuation(player)
	return v.TotalValue, err
}

// Valuation reads funds and holdings under one lock so the parts always add
// up to the total.
func (e *Engine) Valuation(player string) (Valuation, error) {
	l := e.ledgers.get(player)
	l.mu.Lock()
	defer l.mu.Unlock()
	return e.valuationLocked(l)
}

// State returns player's ledger and its valuation read under one lock.
func (e *Engine) State(player string) (LedgerSnapshot, Valuation, error) {
	l := e.ledgers.get(player)
	l.mu.Lock()
	defer l.mu.Unlock()
	v, err := e.valuationLocked(l)
	return l.snapshot(), v, err
}

func (e *Engine) valuationLocked(l *ledger) (Valuation, error) {
	var stock float64
	for _, in := range e.instruments {
		n := l.holdings[in]
		if n == 0 {
			continue
		}
		p, err := e.Price(in, l.day)
		if err != nil {
			return Valuation{}, fmt.Errorf("valuation: %w", err)
		}
		stock += float64(n) * p
	}
	return Valuation{
		Day:        l.day,
		Funds:      l.funds,
		StockValue: stock,
		TotalValue: stock + l.funds,
	}, nil
}

// AvailableSeries is the history player has lived through: candles for
// days 1..Day(player), ending with the candle Price reads today. The result
// is a copy; changing it does not affect the engine.
func (e *Engine) AvailableSeries(player, instrument string) (market.Series, error) {
	s, ok := e.series[instrument]
	if !ok {
		return nil, fmt.Errorf("available series: %w: %q", ErrUnknownInstrument, instrument)
	}
	return slices.Clone(s.Window(e.Day(player))), nil
}

// AvailableHistory returns AvailableSeries for every instrument.
func (e *Engine) AvailableHistory(player string) map[string]market.Series {
	day := e.Day(player)
	out := make(map[string]market.Series, len(e.instruments))
	for _, in := range e.instruments {
		out[in] = slices.Clone(e.series[in].Window(day))
	}
	return out
}
