// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface on pgx connection pools.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/debtsolver/internal/storage"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

// schema keeps the journal in two tables. seq preserves insertion order for
// replay; the partial unique index enforces idempotency keys.
const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id UUID PRIMARY KEY,
    seq BIGSERIAL,
    client_tx_id TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,
    currency TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_client_tx_id
    ON transactions (client_tx_id) WHERE client_tx_id <> '';

CREATE TABLE IF NOT EXISTS transaction_parties (
    transaction_id UUID NOT NULL REFERENCES transactions (id) ON DELETE CASCADE,
    role TEXT NOT NULL CHECK (role IN ('debtor', 'creditor')),
    position INTEGER NOT NULL,
    party TEXT NOT NULL,
    PRIMARY KEY (transaction_id, role, position)
);
`

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// New constructs a Postgres-backed store and ensures the schema exists. The
// pool stays owned by the caller until Close.
func New(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

// RecordTransaction persists a new journal record and its party rows.
func (s *PostgresStore) RecordTransaction(ctx context.Context, rec *storage.TransactionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if rec.ClientTxID != "" {
		var existing string
		err := tx.QueryRow(ctx,
			`SELECT id FROM transactions WHERE client_tx_id = $1`,
			rec.ClientTxID,
		).Scan(&existing)
		if err == nil {
			return storage.ErrDuplicateTransaction
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to check client_tx_id: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO transactions (id, client_tx_id, amount, currency, note, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.ClientTxID, rec.Amount, rec.Currency, rec.Note, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := insertParties(ctx, tx, rec.ID, "debtor", rec.Debtors); err != nil {
		return err
	}
	if err := insertParties(ctx, tx, rec.ID, "creditor", rec.Creditors); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertParties(ctx context.Context, tx pgx.Tx, transactionID, role string, parties []string) error {
	for i, party := range parties {
		_, err := tx.Exec(ctx,
			`INSERT INTO transaction_parties (transaction_id, role, position, party)
             VALUES ($1, $2, $3, $4)`,
			transactionID, role, i, party,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", role, err)
		}
	}
	return nil
}

// GetByClientTxID retrieves the record stored under a client transaction id.
func (s *PostgresStore) GetByClientTxID(ctx context.Context, clientTxID string) (*storage.TransactionRecord, error) {
	rec := &storage.TransactionRecord{}
	err := s.db.QueryRow(ctx,
		`SELECT id, client_tx_id, amount, currency, note, created_at
         FROM transactions WHERE client_tx_id = $1`,
		clientTxID,
	).Scan(&rec.ID, &rec.ClientTxID, &rec.Amount, &rec.Currency, &rec.Note, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if err := s.loadParties(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListTransactions returns all records ordered by their insertion sequence.
func (s *PostgresStore) ListTransactions(ctx context.Context) ([]*storage.TransactionRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, client_tx_id, amount, currency, note, created_at
         FROM transactions ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var records []*storage.TransactionRecord
	for rows.Next() {
		rec := &storage.TransactionRecord{}
		if err := rows.Scan(&rec.ID, &rec.ClientTxID, &rec.Amount, &rec.Currency, &rec.Note, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	for _, rec := range records {
		if err := s.loadParties(ctx, rec); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *PostgresStore) loadParties(ctx context.Context, rec *storage.TransactionRecord) error {
	rows, err := s.db.Query(ctx,
		`SELECT role, party FROM transaction_parties
         WHERE transaction_id = $1 ORDER BY role, position`,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get parties: %w", err)
	}
	defer rows.Close()

	rec.Debtors = nil
	rec.Creditors = nil
	for rows.Next() {
		var role, party string
		if err := rows.Scan(&role, &party); err != nil {
			return fmt.Errorf("failed to scan party: %w", err)
		}
		switch role {
		case "debtor":
			rec.Debtors = append(rec.Debtors, party)
		case "creditor":
			rec.Creditors = append(rec.Creditors, party)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate parties: %w", err)
	}
	return nil
}
