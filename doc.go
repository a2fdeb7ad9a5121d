// Package debtsolver tracks monetary obligations between parties and
// computes a small set of payments that settles them.
//
// A Transaction records that one or more debtors owe one or more creditors
// an amount. A Ledger folds transactions into per-party net balances, one
// independent pool per currency, and Settle matches net debtors against net
// creditors with deterministic greedy largest-first pairing:
//
//	ledger := debtsolver.NewLedger()
//
//	tx, _ := debtsolver.NewTransaction("Alice", "Bob", money.MustParse("20", "USD"))
//	_ = ledger.AddTransaction(tx)
//	tx, _ = debtsolver.NewTransaction("Bob", "Charlie", money.MustParse("20", "USD"))
//	_ = ledger.AddTransaction(tx)
//
//	payments, _ := ledger.Settle(2)
//	// Alice owes Charlie 20.00 USD
//
// Settlement never mutates the ledger and yields identical payments for
// identical state, so callers may recompute it freely as transactions
// arrive. All amounts are exact decimals; the sum of balances within a
// currency is zero after every successful operation.
package debtsolver
