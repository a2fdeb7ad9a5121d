package debtsolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/debtsolver/money"
)

// Party identifies someone who can owe or be owed money. Parties are opaque
// strings that compare and sort by value; two parties are the same exactly
// when their strings are equal.
type Party string

// Transaction validation errors. They all wrap ErrInvalidTransaction, so
// errors.Is(err, ErrInvalidTransaction) matches the whole class while the
// specific sentinel pins down the cause.
var (
	ErrInvalidTransaction = errors.New("debtsolver: invalid transaction")
	ErrNonPositiveAmount  = fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	ErrNoDebtors          = fmt.Errorf("%w: at least one debtor required", ErrInvalidTransaction)
	ErrNoCreditors        = fmt.Errorf("%w: at least one creditor required", ErrInvalidTransaction)
	ErrSelfSettlement     = fmt.Errorf("%w: sole debtor and sole creditor are the same party", ErrInvalidTransaction)
)

// Transaction is an immutable record of one exchange: the debtors owe the
// creditors the amount. When a side holds several parties the amount is
// divided evenly across that side, with any indivisible remainder assigned
// to the earliest parties in the order they were given. Construct
// transactions with NewTransaction or NewSharedTransaction; the zero value
// is invalid and rejected by the ledger.
type Transaction struct {
	debtors   []Party
	creditors []Party
	amount    money.Money
}

// NewTransaction builds the common two-party transaction: debtor owes
// creditor the full amount.
func NewTransaction(debtor, creditor Party, amount money.Money) (Transaction, error) {
	return NewSharedTransaction([]Party{debtor}, []Party{creditor}, amount)
}

// NewSharedTransaction builds a transaction with one or more parties on each
// side. Duplicates within a side collapse to their first occurrence. A party
// may appear on both sides, as when someone fronts a bill they also share
// in, but a transaction whose only debtor is its only creditor is rejected
// since it cannot move any value.
func NewSharedTransaction(debtors, creditors []Party, amount money.Money) (Transaction, error) {
	ds := dedupe(debtors)
	cs := dedupe(creditors)
	switch {
	case !amount.IsPositive():
		return Transaction{}, ErrNonPositiveAmount
	case len(ds) == 0:
		return Transaction{}, ErrNoDebtors
	case len(cs) == 0:
		return Transaction{}, ErrNoCreditors
	case len(ds) == 1 && len(cs) == 1 && ds[0] == cs[0]:
		return Transaction{}, ErrSelfSettlement
	}
	return Transaction{debtors: ds, creditors: cs, amount: amount}, nil
}

// Debtors returns the owing parties in the order they were given.
func (t Transaction) Debtors() []Party {
	out := make([]Party, len(t.debtors))
	copy(out, t.debtors)
	return out
}

// Creditors returns the owed parties in the order they were given.
func (t Transaction) Creditors() []Party {
	out := make([]Party, len(t.creditors))
	copy(out, t.creditors)
	return out
}

// Amount returns the total amount moved by the transaction.
func (t Transaction) Amount() money.Money { return t.amount }

// String renders the transaction as a sentence, e.g.
// "Alice owes Bob 20.00 USD" or "Alice, Bob owe Charlie 30.00 USD".
func (t Transaction) String() string {
	verb := "owes"
	if len(t.debtors) > 1 {
		verb = "owe"
	}
	return fmt.Sprintf("%s %s %s %s", joinParties(t.debtors), verb, joinParties(t.creditors), t.amount)
}

// dedupe drops repeated parties, keeping first-occurrence order.
func dedupe(parties []Party) []Party {
	out := make([]Party, 0, len(parties))
	seen := make(map[Party]struct{}, len(parties))
	for _, p := range parties {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func joinParties(parties []Party) string {
	names := make([]string, len(parties))
	for i, p := range parties {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
