package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// transactions keeps its implicit rowid (the TEXT primary key does not
// replace it), which preserves insertion order for journal replay. The
// unique index on client_tx_id only covers rows that carry a key.
const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    client_tx_id TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,
    currency TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_client_tx_id
    ON transactions(client_tx_id) WHERE client_tx_id != '';

CREATE TABLE IF NOT EXISTS transaction_parties (
    transaction_id TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('debtor', 'creditor')),
    position INTEGER NOT NULL,
    party TEXT NOT NULL,
    PRIMARY KEY (transaction_id, role, position),
    FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_transaction_parties_transaction_id
    ON transaction_parties(transaction_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
