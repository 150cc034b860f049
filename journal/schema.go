// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	player TEXT NOT NULL,
	kind TEXT NOT NULL,
	instrument TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	amount REAL NOT NULL,
	day INTEGER NOT NULL,
	funds_after REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	player TEXT NOT NULL,
	day INTEGER NOT NULL,
	funds REAL NOT NULL,
	stock_value REAL NOT NULL,
	total_value REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_player ON transactions(player, day);
CREATE INDEX IF NOT EXISTS idx_equity_player ON equity(player, day);
`
