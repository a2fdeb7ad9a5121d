// Package memory provides an in-memory storage.Store for tests and
// ephemeral deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/debtsolver/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps the journal in process memory. Records are lost on restart.
type Store struct {
	mu      sync.RWMutex
	records []*storage.TransactionRecord
	byKey   map[string]*storage.TransactionRecord
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{byKey: make(map[string]*storage.TransactionRecord)}
}

// RecordTransaction appends a record, assigning ID and CreatedAt when unset.
func (s *Store) RecordTransaction(_ context.Context, rec *storage.TransactionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ClientTxID != "" {
		if _, ok := s.byKey[rec.ClientTxID]; ok {
			return storage.ErrDuplicateTransaction
		}
	}

	stored := cloneRecord(rec)
	s.records = append(s.records, stored)
	if stored.ClientTxID != "" {
		s.byKey[stored.ClientTxID] = stored
	}
	return nil
}

// GetByClientTxID returns the record stored under the client transaction id.
func (s *Store) GetByClientTxID(_ context.Context, clientTxID string) (*storage.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byKey[clientTxID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// ListTransactions returns all records in insertion order.
func (s *Store) ListTransactions(_ context.Context) ([]*storage.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.TransactionRecord, len(s.records))
	for i, rec := range s.records {
		out[i] = cloneRecord(rec)
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// cloneRecord copies a record so callers cannot mutate stored state.
func cloneRecord(rec *storage.TransactionRecord) *storage.TransactionRecord {
	out := *rec
	out.Debtors = append([]string(nil), rec.Debtors...)
	out.Creditors = append([]string(nil), rec.Creditors...)
	return &out
}
