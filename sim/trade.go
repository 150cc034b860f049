package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/tradegame/journal"
)

// Side is the direction of a market order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ParseSide accepts "buy" or "sell" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

// Buy purchases quantity shares of instrument at the player's current
// price. The cost is rounded up to a whole unit of funds. A zero quantity
// does nothing. On error the ledger is unchanged.
func (e *Engine) Buy(player, instrument string, quantity int) error {
	if quantity == 0 {
		return nil
	}
	if quantity < 0 {
		return fmt.Errorf("buy %s: %w: %d", instrument, ErrInvalidQuantity, quantity)
	}

	l := e.ledgers.get(player)
	var tx journal.Transaction
	err := l.locked(func() error {
		p, err := e.Price(instrument, l.day)
		if err != nil {
			return fmt.Errorf("buy: %w", err)
		}
		cost := math.Ceil(p * float64(quantity))
		if cost > l.funds {
			return fmt.Errorf("buy %d %s for %.0f with %.2f available: %w", quantity, instrument, cost, l.funds, ErrInsufficientFunds)
		}

		l.funds -= cost
		l.holdings[instrument] += quantity

		e.log.Debug("buy", "player", player, "instrument", instrument, "quantity", quantity, "price", p, "cost", cost, "day", l.day)
		tx = e.stamp(journal.Transaction{
			Player:     player,
			Kind:       journal.KindBuy,
			Instrument: instrument,
			Quantity:   quantity,
			Price:      p,
			Amount:     -cost,
			Day:        l.day,
			FundsAfter: l.funds,
			Time:       e.now(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	e.record(tx)
	return nil
}

// Sell disposes of quantity shares of instrument at the player's current
// price. Proceeds are rounded down to a whole unit of funds. A zero
// quantity does nothing. On error the ledger is unchanged.
func (e *Engine) Sell(player, instrument string, quantity int) error {
	if quantity == 0 {
		return nil
	}
	if quantity < 0 {
		return fmt.Errorf("sell %s: %w: %d", instrument, ErrInvalidQuantity, quantity)
	}

	l := e.ledgers.get(player)
	var tx journal.Transaction
	err := l.locked(func() error {
		p, err := e.Price(instrument, l.day)
		if err != nil {
			return fmt.Errorf("sell: %w", err)
		}
		held := l.holdings[instrument]
		if quantity > held {
			return fmt.Errorf("sell %d %s holding %d: %w", quantity, instrument, held, ErrInsufficientHoldings)
		}

		proceeds := math.Floor(p * float64(quantity))
		l.funds += proceeds
		l.holdings[instrument] = held - quantity

		e.log.Debug("sell", "player", player, "instrument", instrument, "quantity", quantity, "price", p, "proceeds", proceeds, "day", l.day)
		tx = e.stamp(journal.Transaction{
			Player:     player,
			Kind:       journal.KindSell,
			Instrument: instrument,
			Quantity:   quantity,
			Price:      p,
			Amount:     proceeds,
			Day:        l.day,
			FundsAfter: l.funds,
			Time:       e.now(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	e.record(tx)
	return nil
}

// MaxOrder bounds an order. For Buy it is floor(funds / price), the most
// shares whose rounded-up cost the player can pay; for Sell it is the
// current holding.
func (e *Engine) MaxOrder(player, instrument string, side Side) (int, error) {
	if side != Buy && side != Sell {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}

	l := e.ledgers.get(player)
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := e.Price(instrument, l.day)
	if err != nil {
		return 0, fmt.Errorf("max order: %w", err)
	}
	if side == Sell {
		return l.holdings[instrument], nil
	}
	return maxAffordable(l.funds, p), nil
}

// maxAffordable returns floor(funds/price), nudged so that it agrees
// exactly with Buy's ceil(price*q) <= funds check under float rounding.
func maxAffordable(funds, price float64) int {
	q := int(math.Floor(funds / price))
	for q > 0 && math.Ceil(price*float64(q)) > funds {
		q--
	}
	for math.Ceil(price*float64(q+1)) <= funds {
		q++
	}
	return q
}
