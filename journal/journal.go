// journal/journal.go
package journal

import "time"

// Kind classifies a ledger transaction.
type Kind string

const (
	KindBuy    Kind = "buy"
	KindSell   Kind = "sell"
	KindSalary Kind = "salary"
)

// Transaction is one funds-changing event on a player's ledger.
// Amount is the signed change in funds: negative for buys.
type Transaction struct {
	ID         string
	Player     string
	Kind       Kind
	Instrument string
	Quantity   int
	Price      float64
	Amount     float64
	Day        int
	FundsAfter float64
	Time       time.Time
}

// EquitySnapshot is a player's valuation at a simulated day.
type EquitySnapshot struct {
	Player     string
	Day        int
	Funds      float64
	StockValue float64
	TotalValue float64
	Time       time.Time
}

type Journal interface {
	RecordTransaction(Transaction) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Discard is a Journal that drops every record.
var Discard Journal = discard{}

type discard struct{}

func (discard) RecordTransaction(Transaction) error { return nil }
func (discard) RecordEquity(EquitySnapshot) error   { return nil }
func (discard) Close() error                        { return nil }
