package debtsolver_test

import (
	"fmt"

	"github.com/mmynk/debtsolver"
	"github.com/mmynk/debtsolver/money"
)

func ExampleLedger_Settle() {
	ledger := debtsolver.NewLedger()

	for _, row := range []struct {
		debtor, creditor debtsolver.Party
		amount           string
	}{
		{"Alice", "Bob", "20"},
		{"Bob", "Charlie", "50"},
		{"Charlie", "Alice", "35"},
	} {
		tx, err := debtsolver.NewTransaction(row.debtor, row.creditor, money.MustParse(row.amount, "USD"))
		if err != nil {
			panic(err)
		}
		if err := ledger.AddTransaction(tx); err != nil {
			panic(err)
		}
	}

	payments, err := ledger.Settle(2)
	if err != nil {
		panic(err)
	}
	for _, p := range payments {
		fmt.Println(p)
	}
	// Output:
	// Bob owes Alice 15.00 USD
	// Bob owes Charlie 15.00 USD
}

func ExampleLedger_Settle_grouped() {
	ledger := debtsolver.NewLedger()

	for _, row := range []struct {
		debtor, creditor debtsolver.Party
		amount           string
	}{
		{"Alice", "Bob", "20"},
		{"Bob", "Charlie", "50"},
		{"Charlie", "Alice", "35"},
	} {
		tx, err := debtsolver.NewTransaction(row.debtor, row.creditor, money.MustParse(row.amount, "USD"))
		if err != nil {
			panic(err)
		}
		if err := ledger.AddTransaction(tx); err != nil {
			panic(err)
		}
	}

	// Allowing three parties per payment folds Bob's two transfers into one.
	payments, err := ledger.Settle(3)
	if err != nil {
		panic(err)
	}
	for _, p := range payments {
		fmt.Println(p)
	}
	// Output:
	// Bob owes Alice, Charlie 30.00 USD
}

func ExampleNewSharedTransaction() {
	ledger := debtsolver.NewLedger()

	// Alice paid a 100.00 dinner that Bob, Charlie and Dana owe her for.
	dinner, err := debtsolver.NewSharedTransaction(
		[]debtsolver.Party{"Bob", "Charlie", "Dana"},
		[]debtsolver.Party{"Alice"},
		money.MustParse("100", "USD"),
	)
	if err != nil {
		panic(err)
	}
	if err := ledger.AddTransaction(dinner); err != nil {
		panic(err)
	}

	payments, err := ledger.Settle(2)
	if err != nil {
		panic(err)
	}
	for _, p := range payments {
		fmt.Println(p)
	}
	// Output:
	// Bob owes Alice 33.34 USD
	// Charlie owes Alice 33.33 USD
	// Dana owes Alice 33.33 USD
}
