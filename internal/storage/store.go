// Package storage provides abstractions for persisting the transaction
// journal.
package storage

import (
	"context"
	"errors"
)

// ErrDuplicateTransaction is returned when a record reuses a client
// transaction id that the journal already holds.
var ErrDuplicateTransaction = errors.New("storage: duplicate transaction")

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("storage: transaction not found")

// TransactionRecord is one journal row: a recorded obligation between
// parties. Debtors and creditors keep their request order, since share
// remainders are assigned to the earliest parties when the ledger is
// rebuilt from the journal.
type TransactionRecord struct {
	// ID is the journal-assigned identifier.
	ID string
	// ClientTxID is the caller-supplied idempotency key; empty means the
	// caller did not ask for idempotent recording.
	ClientTxID string
	// Debtors and Creditors list party identifiers in request order.
	Debtors   []string
	Creditors []string
	// Amount is the exact decimal amount as a string; Currency its code.
	Amount   string
	Currency string
	// Note is free-form caller text.
	Note string
	// CreatedAt is the record time in unix seconds.
	CreatedAt int64
}

// Store defines the journal backend. This abstraction allows swapping
// backends (SQLite, PostgreSQL, in-memory) without changing the service
// layer. Implementations must return records from ListTransactions in
// insertion order so that ledger replay reproduces the original balances
// exactly.
type Store interface {
	// RecordTransaction persists a new record, assigning ID and CreatedAt
	// when they are unset. Reusing a non-empty ClientTxID fails with
	// ErrDuplicateTransaction.
	RecordTransaction(ctx context.Context, rec *TransactionRecord) error

	// GetByClientTxID returns the record stored under the given client
	// transaction id, or ErrNotFound.
	GetByClientTxID(ctx context.Context, clientTxID string) (*TransactionRecord, error)

	// ListTransactions returns every record in insertion order.
	ListTransactions(ctx context.Context) ([]*TransactionRecord, error)

	// Close releases any resources held by the store.
	Close() error
}
