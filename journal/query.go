package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

const transactionColumns = `id, player, kind, instrument, quantity, price, amount, day, funds_after, time`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (Transaction, error) {
	var (
		rec  Transaction
		kind string
	)
	err := s.Scan(
		&rec.ID,
		&rec.Player,
		&kind,
		&rec.Instrument,
		&rec.Quantity,
		&rec.Price,
		&rec.Amount,
		&rec.Day,
		&rec.FundsAfter,
		&rec.Time,
	)
	rec.Kind = Kind(kind)
	return rec, err
}

// GetTransaction returns a single transaction by ID.
func (j *SQLite) GetTransaction(id string) (Transaction, error) {
	row := j.db.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)

	rec, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transaction{}, fmt.Errorf("transaction %q not found", id)
		}
		return Transaction{}, err
	}
	return rec, nil
}

// ListTransactions returns a player's transactions in the order they happened.
func (j *SQLite) ListTransactions(player string) ([]Transaction, error) {
	rows, err := j.db.Query(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE player = ?
		ORDER BY day ASC, id ASC`, player)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquity returns a player's equity snapshots ordered by simulated day.
func (j *SQLite) ListEquity(player string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT player, day, funds, stock_value, total_value, time
		FROM equity
		WHERE player = ?
		ORDER BY day ASC, rowid ASC`, player)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var rec EquitySnapshot
		if err := rows.Scan(
			&rec.Player,
			&rec.Day,
			&rec.Funds,
			&rec.StockValue,
			&rec.TotalValue,
			&rec.Time,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Players lists every player with at least one journaled record.
func (j *SQLite) Players() ([]string, error) {
	rows, err := j.db.Query(`
		SELECT player FROM transactions
		UNION
		SELECT player FROM equity
		ORDER BY player`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Report loads everything journaled for player into a Report.
func (j *SQLite) Report(player string) (Report, error) {
	txs, err := j.ListTransactions(player)
	if err != nil {
		return Report{}, err
	}
	eq, err := j.ListEquity(player)
	if err != nil {
		return Report{}, err
	}
	return NewReport(player, txs, eq), nil
}
