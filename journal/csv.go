package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// CSV journals transactions and equity snapshots into two files.
type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

var (
	transactionHeader = []string{"id", "player", "kind", "instrument", "quantity", "price", "amount", "day", "funds_after", "time"}
	equityHeader      = []string{"player", "day", "funds", "stock_value", "total_value", "time"}
)

func NewCSV(transactionsPath, equityPath string) (*CSV, error) {
	tf, err := os.Create(transactionsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	j := &CSV{trades: csv.NewWriter(tf), equity: csv.NewWriter(ef), tf: tf, ef: ef}
	if err := j.write(j.trades, transactionHeader); err != nil {
		j.Close()
		return nil, err
	}
	if err := j.write(j.equity, equityHeader); err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSV) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) RecordTransaction(t Transaction) error {
	return j.write(j.trades, []string{
		t.ID,
		t.Player,
		string(t.Kind),
		t.Instrument,
		strconv.Itoa(t.Quantity),
		price(t.Price),
		cash(t.Amount),
		strconv.Itoa(t.Day),
		cash(t.FundsAfter),
		t.Time.UTC().Format(time.RFC3339),
	})
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	return j.write(j.equity, []string{
		e.Player,
		strconv.Itoa(e.Day),
		cash(e.Funds),
		cash(e.StockValue),
		cash(e.TotalValue),
		e.Time.UTC().Format(time.RFC3339),
	})
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func cash(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func price(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
