package debtsolver

import (
	"fmt"
	"strings"

	"github.com/mmynk/debtsolver/money"
)

// Share is one party's portion of one side of a payment. The shares on a
// side always sum exactly to the payment amount.
type Share struct {
	Party  Party
	Amount money.Money
}

// Payment is a single settling transfer suggested by Settle: the From
// parties pay the To parties Amount in total. Every payment carries at least
// one party per side; a side grows beyond one party only when settling with
// a group size above 2. Payments are plain values, detached from the ledger
// that produced them.
type Payment struct {
	From   []Share
	To     []Share
	Amount money.Money
}

// Payer returns the first paying party. Most payments have exactly one.
func (p Payment) Payer() Party { return p.From[0].Party }

// Payee returns the first receiving party. Most payments have exactly one.
func (p Payment) Payee() Party { return p.To[0].Party }

// String renders the payment as a sentence, e.g.
// "Alice owes Charlie 20.00 USD" or "Bob owes Alice, Charlie 30.00 USD".
func (p Payment) String() string {
	verb := "owes"
	if len(p.From) > 1 {
		verb = "owe"
	}
	return fmt.Sprintf("%s %s %s %s", joinShares(p.From), verb, joinShares(p.To), p.Amount)
}

func joinShares(shares []Share) string {
	names := make([]string, len(shares))
	for i, s := range shares {
		names[i] = string(s.Party)
	}
	return strings.Join(names, ", ")
}
