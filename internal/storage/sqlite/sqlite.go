// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/debtsolver/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordTransaction persists a new journal record and its party rows.
func (s *SQLiteStore) RecordTransaction(ctx context.Context, rec *storage.TransactionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Duplicate check inside the transaction; the unique index backstops
	// concurrent writers.
	if rec.ClientTxID != "" {
		var existing string
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM transactions WHERE client_tx_id = ?",
			rec.ClientTxID,
		).Scan(&existing)
		if err == nil {
			return storage.ErrDuplicateTransaction
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check client_tx_id: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO transactions (id, client_tx_id, amount, currency, note, created_at) VALUES (?, ?, ?, ?, ?, ?)",
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

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertParties writes one side of a record, keeping request order in the
// position column.
func insertParties(ctx context.Context, tx *sql.Tx, transactionID, role string, parties []string) error {
	for i, party := range parties {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO transaction_parties (transaction_id, role, position, party) VALUES (?, ?, ?, ?)",
			transactionID, role, i, party,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", role, err)
		}
	}
	return nil
}

// GetByClientTxID retrieves the record stored under a client transaction id.
func (s *SQLiteStore) GetByClientTxID(ctx context.Context, clientTxID string) (*storage.TransactionRecord, error) {
	rec := &storage.TransactionRecord{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, client_tx_id, amount, currency, note, created_at FROM transactions WHERE client_tx_id = ?",
		clientTxID,
	).Scan(&rec.ID, &rec.ClientTxID, &rec.Amount, &rec.Currency, &rec.Note, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
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

// ListTransactions returns all records in insertion order, which SQLite's
// implicit rowid preserves.
func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]*storage.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, client_tx_id, amount, currency, note, created_at FROM transactions ORDER BY rowid",
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

// loadParties fills both sides of a record in stored position order.
func (s *SQLiteStore) loadParties(ctx context.Context, rec *storage.TransactionRecord) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, party FROM transaction_parties WHERE transaction_id = ? ORDER BY role, position",
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
