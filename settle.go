package debtsolver

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/debtsolver/money"
)

// ErrGroupSize reports a settlement request with a group size below the
// pairwise minimum of 2.
var ErrGroupSize = errors.New("debtsolver: max group size must be at least 2")

// Settle computes the payments that would zero out every balance in the
// ledger, handling each currency independently in sorted currency order.
//
// Within a currency the engine repeatedly matches the debtor owing the most
// against the creditor owed the most and moves the smaller of the two
// magnitudes between them, carrying any remainder into the next round. Ties
// in magnitude resolve by ascending party, so equal inputs always settle
// identically. A group of n parties never needs more than n-1 payments.
//
// maxGroupSize caps how many parties may stand together on either side of a
// single payment. At the minimum of 2 every payment is one debtor paying one
// creditor. Larger values let the bigger side of a match absorb further
// counterparties into one combined payment, which usually shortens the
// payment list but is no longer guaranteed minimal.
//
// Settle reads the ledger without mutating it: recording the suggested
// payments as transactions is the caller's decision. It panics if a
// currency's balances fail to sum to zero, which cannot happen through
// AddTransaction and always indicates outside corruption of ledger state.
func (l *Ledger) Settle(maxGroupSize int) ([]Payment, error) {
	if maxGroupSize < 2 {
		return nil, ErrGroupSize
	}
	var payments []Payment
	for _, currency := range l.Currencies() {
		payments = append(payments, l.solveCurrency(currency, maxGroupSize)...)
	}
	return payments, nil
}

// SettleCurrency is Settle restricted to a single currency. A currency with
// no balances settles to no payments.
func (l *Ledger) SettleCurrency(currency string, maxGroupSize int) ([]Payment, error) {
	if maxGroupSize < 2 {
		return nil, ErrGroupSize
	}
	return l.solveCurrency(normalizeCurrency(currency), maxGroupSize), nil
}

// solveCurrency snapshots one currency pool under the read lock and solves
// the snapshot, so settlement never blocks writers for longer than the copy.
func (l *Ledger) solveCurrency(currency string, maxGroupSize int) []Payment {
	l.mu.RLock()
	pool := l.balances[currency]
	debtors := make(matchHeap, 0, len(pool))
	creditors := make(matchHeap, 0, len(pool))
	for p, amt := range pool {
		switch amt.Sign() {
		case -1:
			debtors = append(debtors, candidate{party: p, magnitude: amt.Neg()})
		case 1:
			creditors = append(creditors, candidate{party: p, magnitude: amt})
		}
	}
	l.mu.RUnlock()

	return match(currency, debtors, creditors, maxGroupSize)
}

// match drains both heaps into a payment sequence. Each round pops the
// largest debtor and largest creditor; the side with the smaller magnitude
// clears completely while the other returns to its heap with the difference,
// unless grouping absorbs it first.
func match(currency string, debtors, creditors matchHeap, maxGroupSize int) []Payment {
	heap.Init(&debtors)
	heap.Init(&creditors)

	// Grouping only starts above the pairwise minimum: at 2 each side is a
	// single party, at larger sizes one side may grow up to the cap.
	sideCap := 1
	if maxGroupSize > 2 {
		sideCap = maxGroupSize
	}

	var payments []Payment
	for debtors.Len() > 0 && creditors.Len() > 0 {
		d := heap.Pop(&debtors).(candidate)
		c := heap.Pop(&creditors).(candidate)

		switch d.magnitude.Cmp(c.magnitude) {
		case 0:
			payments = append(payments, Payment{
				From:   []Share{{Party: d.party, Amount: money.New(d.magnitude, currency)}},
				To:     []Share{{Party: c.party, Amount: money.New(c.magnitude, currency)}},
				Amount: money.New(d.magnitude, currency),
			})

		case -1: // debtor clears in full, creditor keeps the difference
			from, paid := absorb(&debtors, d, c.magnitude, sideCap, currency)
			payments = append(payments, Payment{
				From:   from,
				To:     []Share{{Party: c.party, Amount: money.New(paid, currency)}},
				Amount: money.New(paid, currency),
			})
			if rem := c.magnitude.Sub(paid); rem.Sign() > 0 {
				heap.Push(&creditors, candidate{party: c.party, magnitude: rem})
			}

		case 1: // creditor clears in full, debtor keeps the difference
			to, paid := absorb(&creditors, c, d.magnitude, sideCap, currency)
			payments = append(payments, Payment{
				From:   []Share{{Party: d.party, Amount: money.New(paid, currency)}},
				To:     to,
				Amount: money.New(paid, currency),
			})
			if rem := d.magnitude.Sub(paid); rem.Sign() > 0 {
				heap.Push(&debtors, candidate{party: d.party, magnitude: rem})
			}
		}
	}

	// Both heaps must exhaust together; debt and credit totals are equal in
	// any ledger built through AddTransaction.
	if debtors.Len() > 0 || creditors.Len() > 0 {
		panic(fmt.Sprintf(
			"debtsolver: %s balances do not sum to zero: %d debtors and %d creditors left unmatched",
			currency, debtors.Len(), creditors.Len(),
		))
	}
	return payments
}

// absorb builds the grouped side of one payment. Starting from first, which
// is already popped and clears in full, it keeps pulling the side's largest
// remaining candidates until target is covered, the heap runs dry, or the
// group reaches sideCap parties. Only the last pulled candidate may clear
// partially; its remainder goes back on the heap. Returns the shares in
// match order and the total they cover.
func absorb(h *matchHeap, first candidate, target decimal.Decimal, sideCap int, currency string) ([]Share, decimal.Decimal) {
	shares := []Share{{Party: first.party, Amount: money.New(first.magnitude, currency)}}
	covered := first.magnitude

	for covered.Cmp(target) < 0 && h.Len() > 0 && len(shares) < sideCap {
		next := heap.Pop(h).(candidate)
		take := next.magnitude
		if room := target.Sub(covered); take.Cmp(room) > 0 {
			take = room
			heap.Push(h, candidate{party: next.party, magnitude: next.magnitude.Sub(take)})
		}
		shares = append(shares, Share{Party: next.party, Amount: money.New(take, currency)})
		covered = covered.Add(take)
	}
	return shares, covered
}

// candidate is one party's outstanding magnitude on one side of the match.
// Magnitudes are always positive; the sign lives in which heap holds it.
type candidate struct {
	party     Party
	magnitude decimal.Decimal
}

// matchHeap is a max-heap of candidates ordered by magnitude with ties
// broken by ascending party, so results never depend on map iteration order.
type matchHeap []candidate

func (h matchHeap) Len() int { return len(h) }

func (h matchHeap) Less(i, j int) bool {
	if c := h[i].magnitude.Cmp(h[j].magnitude); c != 0 {
		return c > 0
	}
	return h[i].party < h[j].party
}

func (h matchHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *matchHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	top := old[n-1]
	*h = old[:n-1]
	return top
}
