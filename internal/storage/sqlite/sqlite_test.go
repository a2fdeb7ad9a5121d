package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mmynk/debtsolver/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "debtsolver-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("RecordTransaction generates ID and CreatedAt", func(t *testing.T) {
		rec := &storage.TransactionRecord{
			Debtors:   []string{"Alice"},
			Creditors: []string{"Bob"},
			Amount:    "20.00",
			Currency:  "USD",
		}

		if err := store.RecordTransaction(ctx, rec); err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}
		if rec.ID == "" {
			t.Error("Expected record ID to be generated")
		}
		if rec.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetByClientTxID retrieves complete record", func(t *testing.T) {
		original := &storage.TransactionRecord{
			ClientTxID: "req-42",
			Debtors:    []string{"Dana", "Bob", "Charlie"},
			Creditors:  []string{"Alice"},
			Amount:     "100.00",
			Currency:   "USD",
			Note:       "team dinner",
		}
		if err := store.RecordTransaction(ctx, original); err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}

		got, err := store.GetByClientTxID(ctx, "req-42")
		if err != nil {
			t.Fatalf("GetByClientTxID failed: %v", err)
		}
		if got.ID != original.ID {
			t.Errorf("ID = %s, want %s", got.ID, original.ID)
		}
		// Party order must survive the round trip; replay depends on it.
		if !reflect.DeepEqual(got.Debtors, []string{"Dana", "Bob", "Charlie"}) {
			t.Errorf("Debtors = %v, want [Dana Bob Charlie]", got.Debtors)
		}
		if !reflect.DeepEqual(got.Creditors, []string{"Alice"}) {
			t.Errorf("Creditors = %v, want [Alice]", got.Creditors)
		}
		if got.Amount != "100.00" || got.Currency != "USD" || got.Note != "team dinner" {
			t.Errorf("unexpected record fields: %+v", got)
		}
	})

	t.Run("GetByClientTxID returns ErrNotFound for unknown key", func(t *testing.T) {
		if _, err := store.GetByClientTxID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("RecordTransaction rejects duplicate client tx id", func(t *testing.T) {
		first := &storage.TransactionRecord{
			ClientTxID: "req-dup",
			Debtors:    []string{"Alice"},
			Creditors:  []string{"Bob"},
			Amount:     "5.00",
			Currency:   "USD",
		}
		if err := store.RecordTransaction(ctx, first); err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}

		again := &storage.TransactionRecord{
			ClientTxID: "req-dup",
			Debtors:    []string{"Alice"},
			Creditors:  []string{"Bob"},
			Amount:     "5.00",
			Currency:   "USD",
		}
		if err := store.RecordTransaction(ctx, again); !errors.Is(err, storage.ErrDuplicateTransaction) {
			t.Errorf("err = %v, want ErrDuplicateTransaction", err)
		}
	})

	t.Run("records without client tx id never collide", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rec := &storage.TransactionRecord{
				Debtors:   []string{"Erin"},
				Creditors: []string{"Frank"},
				Amount:    "1.00",
				Currency:  "USD",
			}
			if err := store.RecordTransaction(ctx, rec); err != nil {
				t.Fatalf("RecordTransaction %d failed: %v", i, err)
			}
		}
	})
}

func TestSQLiteStoreListsInInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	amounts := []string{"1.00", "2.00", "3.00", "4.00"}
	for _, amount := range amounts {
		rec := &storage.TransactionRecord{
			Debtors:   []string{"Alice"},
			Creditors: []string{"Bob"},
			Amount:    amount,
			Currency:  "USD",
		}
		if err := store.RecordTransaction(ctx, rec); err != nil {
			t.Fatalf("RecordTransaction(%s) failed: %v", amount, err)
		}
	}

	records, err := store.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(records) != len(amounts) {
		t.Fatalf("ListTransactions returned %d records, want %d", len(records), len(amounts))
	}
	for i, rec := range records {
		if rec.Amount != amounts[i] {
			t.Errorf("record %d amount = %s, want %s", i, rec.Amount, amounts[i])
		}
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "debtsolver-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)
	dbPath := filepath.Join(tempDir, "test.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ctx := context.Background()
	rec := &storage.TransactionRecord{
		Debtors:   []string{"Alice"},
		Creditors: []string{"Bob"},
		Amount:    "20.00",
		Currency:  "USD",
	}
	if err := store.RecordTransaction(ctx, rec); err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != rec.ID {
		t.Fatalf("reopened store returned %v, want the original record", records)
	}
}
