package debtsolver

import (
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmynk/debtsolver/money"
)

// Ledger folds transactions into per-party net balances, one independent
// pool per currency. A negative balance owes money overall, a positive one
// is owed, and parties whose balance reaches exactly zero drop out. Within
// every currency the balances always sum to exactly zero.
//
// A Ledger is safe for concurrent use. Create ledgers with NewLedger; the
// zero value is not usable.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]map[Party]decimal.Decimal
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[string]map[Party]decimal.Decimal)}
}

// AddTransaction folds one transaction into the net balances: every debtor
// is debited its share of the amount and every creditor credited its share,
// so the currency's balance sum stays at exactly zero. Shares follow
// money.Split, with remainders going to the earliest parties on each side.
//
// The ledger is unchanged on error. A zero Transaction that bypassed the
// constructors fails with ErrInvalidTransaction.
func (l *Ledger) AddTransaction(t Transaction) error {
	if len(t.debtors) == 0 || len(t.creditors) == 0 || !t.amount.IsPositive() {
		return ErrInvalidTransaction
	}
	debits, err := t.amount.Split(len(t.debtors))
	if err != nil {
		return err
	}
	credits, err := t.amount.Split(len(t.creditors))
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	currency := t.amount.Currency()
	pool := l.balances[currency]
	if pool == nil {
		pool = make(map[Party]decimal.Decimal)
		l.balances[currency] = pool
	}
	for i, p := range t.debtors {
		adjust(pool, p, debits[i].Amount().Neg())
	}
	for i, p := range t.creditors {
		adjust(pool, p, credits[i].Amount())
	}
	if len(pool) == 0 {
		delete(l.balances, currency)
	}
	return nil
}

// adjust moves one party's balance by delta, removing entries that land on
// exactly zero so settled parties vanish from reads.
func adjust(pool map[Party]decimal.Decimal, p Party, delta decimal.Decimal) {
	next := pool[p].Add(delta)
	if next.IsZero() {
		delete(pool, p)
		return
	}
	pool[p] = next
}

// NetBalances returns the non-zero net balances for one currency, keyed by
// party. The returned map is a copy; mutating it does not touch the ledger.
func (l *Ledger) NetBalances(currency string) map[Party]money.Money {
	code := normalizeCurrency(currency)

	l.mu.RLock()
	defer l.mu.RUnlock()

	pool := l.balances[code]
	out := make(map[Party]money.Money, len(pool))
	for p, amt := range pool {
		out[p] = money.New(amt, code)
	}
	return out
}

// Currencies returns the currencies holding at least one non-zero balance,
// sorted ascending.
func (l *Ledger) Currencies() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, 0, len(l.balances))
	for c := range l.balances {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// normalizeCurrency mirrors what the money constructors do to codes, so
// lookups accept the same spellings that created the balances.
func normalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}
