package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTransaction(t Transaction) error {
	_, err := j.db.Exec(`
		INSERT INTO transactions
		(id, player, kind, instrument, quantity, price, amount, day, funds_after, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Player, string(t.Kind), t.Instrument, t.Quantity,
		t.Price, t.Amount, t.Day, t.FundsAfter, t.Time,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(player, day, funds, stock_value, total_value, time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Player, e.Day, e.Funds, e.StockValue, e.TotalValue, e.Time,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
