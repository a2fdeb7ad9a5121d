package rpc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/debtsolver/internal/auth"
	"github.com/mmynk/debtsolver/internal/middleware"
	"github.com/mmynk/debtsolver/internal/rpc"
	"github.com/mmynk/debtsolver/internal/service"
	"github.com/mmynk/debtsolver/internal/storage/memory"
	"github.com/mmynk/debtsolver/pkg/logging"
)

func newTestServer(t *testing.T, opts ...connect.HandlerOption) (*httptest.Server, *rpc.LedgerServiceClient) {
	t.Helper()
	svc := service.NewLedgerService(memory.New(), service.Options{Logger: logging.Discard()})

	mux := http.NewServeMux()
	mux.Handle(rpc.NewLedgerServiceHandler(svc, opts...))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, rpc.NewLedgerServiceClient(srv.Client(), srv.URL)
}

func TestLedgerServiceOverHTTP(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	for _, tx := range []rpc.RecordTransactionRequest{
		{Debtors: []string{"Alice"}, Creditors: []string{"Bob"}, Amount: "20", Currency: "USD"},
		{Debtors: []string{"Bob"}, Creditors: []string{"Charlie"}, Amount: "20", Currency: "USD"},
	} {
		resp, err := client.RecordTransaction(ctx, connect.NewRequest(&tx))
		if err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}
		if resp.Msg.TransactionID == "" {
			t.Fatal("RecordTransaction returned an empty transaction id")
		}
	}

	balances, err := client.GetBalances(ctx, connect.NewRequest(&rpc.GetBalancesRequest{Currency: "USD"}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	want := []rpc.PartyBalance{
		{Party: "Alice", Amount: "-20", Display: "-20.00 USD"},
		{Party: "Charlie", Amount: "20", Display: "20.00 USD"},
	}
	if len(balances.Msg.Balances) != len(want) {
		t.Fatalf("got %d balances, want %d: %+v", len(balances.Msg.Balances), len(want), balances.Msg.Balances)
	}
	for i, w := range want {
		if balances.Msg.Balances[i] != w {
			t.Errorf("balances[%d] = %+v, want %+v", i, balances.Msg.Balances[i], w)
		}
	}

	settled, err := client.SettleDebts(ctx, connect.NewRequest(&rpc.SettleDebtsRequest{}))
	if err != nil {
		t.Fatalf("SettleDebts failed: %v", err)
	}
	if len(settled.Msg.Payments) != 1 || settled.Msg.Payments[0].Display != "Alice owes Charlie 20.00 USD" {
		t.Errorf("payments = %+v, want single payment Alice owes Charlie 20.00 USD", settled.Msg.Payments)
	}

	listed, err := client.ListTransactions(ctx, connect.NewRequest(&rpc.ListTransactionsRequest{}))
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(listed.Msg.Transactions) != 2 {
		t.Errorf("got %d transactions, want 2", len(listed.Msg.Transactions))
	}
}

func TestLedgerServiceErrorsCrossTheWire(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	_, err := client.RecordTransaction(ctx, connect.NewRequest(&rpc.RecordTransactionRequest{
		Debtors: []string{"Alice"}, Creditors: []string{"Alice"}, Amount: "20", Currency: "USD",
	}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("self settlement: code = %v, want %v", connect.CodeOf(err), connect.CodeInvalidArgument)
	}

	req := &rpc.RecordTransactionRequest{
		ClientTxID: "evt-1",
		Debtors:    []string{"Alice"}, Creditors: []string{"Bob"},
		Amount: "5", Currency: "USD",
	}
	if _, err := client.RecordTransaction(ctx, connect.NewRequest(req)); err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	_, err = client.RecordTransaction(ctx, connect.NewRequest(req))
	if connect.CodeOf(err) != connect.CodeAlreadyExists {
		t.Errorf("duplicate: code = %v, want %v", connect.CodeOf(err), connect.CodeAlreadyExists)
	}
}

func TestLedgerServiceRequiresAuthWhenConfigured(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Minute)
	_, client := newTestServer(t, connect.WithInterceptors(
		middleware.RequireAuth(manager),
		middleware.LoggingInterceptor(logging.Discard()),
	))
	ctx := context.Background()

	_, err := client.ListCurrencies(ctx, connect.NewRequest(&rpc.ListCurrenciesRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("anonymous call: code = %v, want %v", connect.CodeOf(err), connect.CodeUnauthenticated)
	}

	token, err := manager.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	req := connect.NewRequest(&rpc.ListCurrenciesRequest{})
	req.Header().Set("Authorization", "Bearer "+token)
	if _, err := client.ListCurrencies(ctx, req); err != nil {
		t.Fatalf("authenticated call failed: %v", err)
	}
}
