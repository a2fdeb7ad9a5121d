// Package rpc defines the Connect wire contract of the settlement service:
// its message types, procedure names, handler interface and client.
//
// The messages are plain Go structs carried as JSON (see codec.go), so the
// package plays the role protoc-generated code usually does, without a
// protobuf schema.
package rpc

// RecordTransactionRequest records one obligation in the journal and ledger.
type RecordTransactionRequest struct {
	// Debtors and Creditors list party identifiers in share order; the
	// earliest parties receive any rounding remainder.
	Debtors   []string `json:"debtors"`
	Creditors []string `json:"creditors"`
	// Amount is a decimal string such as "29.99".
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	// ClientTxID makes the request idempotent when non-empty: replays are
	// rejected with an already-exists error naming the original record.
	ClientTxID string `json:"client_tx_id,omitempty"`
	Note       string `json:"note,omitempty"`
}

// RecordTransactionResponse reports the journal id of the stored record.
type RecordTransactionResponse struct {
	TransactionID string `json:"transaction_id"`
}

// GetBalancesRequest asks for the net balances of one currency.
type GetBalancesRequest struct {
	Currency string `json:"currency"`
}

// PartyBalance is one party's net position: negative owes, positive is owed.
type PartyBalance struct {
	Party  string `json:"party"`
	Amount string `json:"amount"`
	// Display is the human rendering, e.g. "20.00 USD".
	Display string `json:"display"`
}

// GetBalancesResponse lists non-zero balances sorted by party.
type GetBalancesResponse struct {
	Currency string         `json:"currency"`
	Balances []PartyBalance `json:"balances"`
}

// ListCurrenciesRequest asks for the currencies with outstanding balances.
type ListCurrenciesRequest struct{}

// ListCurrenciesResponse lists currencies sorted ascending.
type ListCurrenciesResponse struct {
	Currencies []string `json:"currencies"`
}

// SettleDebtsRequest asks for the payments that settle outstanding balances.
type SettleDebtsRequest struct {
	// Currency limits settlement to one currency; empty settles all.
	Currency string `json:"currency,omitempty"`
	// MaxGroupSize caps parties on one side of a payment; zero uses the
	// server default.
	MaxGroupSize int `json:"max_group_size,omitempty"`
}

// PaymentShare is one party's portion of a payment side.
type PaymentShare struct {
	Party  string `json:"party"`
	Amount string `json:"amount"`
}

// PaymentMessage is one settling transfer.
type PaymentMessage struct {
	From     []PaymentShare `json:"from"`
	To       []PaymentShare `json:"to"`
	Amount   string         `json:"amount"`
	Currency string         `json:"currency"`
	// Display is the human rendering, e.g. "Alice owes Charlie 20.00 USD".
	Display string `json:"display"`
}

// SettleDebtsResponse lists the suggested payments in settlement order.
type SettleDebtsResponse struct {
	Payments []PaymentMessage `json:"payments"`
}

// ListTransactionsRequest asks for the recorded journal.
type ListTransactionsRequest struct{}

// TransactionMessage is one journal record.
type TransactionMessage struct {
	TransactionID string   `json:"transaction_id"`
	ClientTxID    string   `json:"client_tx_id,omitempty"`
	Debtors       []string `json:"debtors"`
	Creditors     []string `json:"creditors"`
	Amount        string   `json:"amount"`
	Currency      string   `json:"currency"`
	Note          string   `json:"note,omitempty"`
	CreatedAt     int64    `json:"created_at"`
}

// ListTransactionsResponse lists records in insertion order.
type ListTransactionsResponse struct {
	Transactions []TransactionMessage `json:"transactions"`
}
