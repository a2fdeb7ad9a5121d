package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// LedgerServiceName is the fully qualified service name.
const LedgerServiceName = "debtsolver.v1.LedgerService"

// Procedure paths of the LedgerService, mounted relative to the handler
// prefix returned by NewLedgerServiceHandler.
const (
	LedgerServiceRecordTransactionProcedure = "/" + LedgerServiceName + "/RecordTransaction"
	LedgerServiceGetBalancesProcedure       = "/" + LedgerServiceName + "/GetBalances"
	LedgerServiceListCurrenciesProcedure    = "/" + LedgerServiceName + "/ListCurrencies"
	LedgerServiceSettleDebtsProcedure       = "/" + LedgerServiceName + "/SettleDebts"
	LedgerServiceListTransactionsProcedure  = "/" + LedgerServiceName + "/ListTransactions"
)

// LedgerServiceHandler is the server contract implemented by the service
// layer.
type LedgerServiceHandler interface {
	RecordTransaction(context.Context, *connect.Request[RecordTransactionRequest]) (*connect.Response[RecordTransactionResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	ListCurrencies(context.Context, *connect.Request[ListCurrenciesRequest]) (*connect.Response[ListCurrenciesResponse], error)
	SettleDebts(context.Context, *connect.Request[SettleDebtsRequest]) (*connect.Response[SettleDebtsResponse], error)
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler for svc, returning the path
// prefix to mount it on. Callers pass interceptors and other options through
// opts; the JSON codec is always installed.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(LedgerServiceRecordTransactionProcedure, connect.NewUnaryHandler(
		LedgerServiceRecordTransactionProcedure,
		svc.RecordTransaction,
		opts...,
	))
	mux.Handle(LedgerServiceGetBalancesProcedure, connect.NewUnaryHandler(
		LedgerServiceGetBalancesProcedure,
		svc.GetBalances,
		opts...,
	))
	mux.Handle(LedgerServiceListCurrenciesProcedure, connect.NewUnaryHandler(
		LedgerServiceListCurrenciesProcedure,
		svc.ListCurrencies,
		opts...,
	))
	mux.Handle(LedgerServiceSettleDebtsProcedure, connect.NewUnaryHandler(
		LedgerServiceSettleDebtsProcedure,
		svc.SettleDebts,
		opts...,
	))
	mux.Handle(LedgerServiceListTransactionsProcedure, connect.NewUnaryHandler(
		LedgerServiceListTransactionsProcedure,
		svc.ListTransactions,
		opts...,
	))
	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient calls the service over HTTP.
type LedgerServiceClient struct {
	recordTransaction *connect.Client[RecordTransactionRequest, RecordTransactionResponse]
	getBalances       *connect.Client[GetBalancesRequest, GetBalancesResponse]
	listCurrencies    *connect.Client[ListCurrenciesRequest, ListCurrenciesResponse]
	settleDebts       *connect.Client[SettleDebtsRequest, SettleDebtsResponse]
	listTransactions  *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
}

// NewLedgerServiceClient builds a client against baseURL, e.g.
// "http://localhost:8080".
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &LedgerServiceClient{
		recordTransaction: connect.NewClient[RecordTransactionRequest, RecordTransactionResponse](
			httpClient, baseURL+LedgerServiceRecordTransactionProcedure, opts...,
		),
		getBalances: connect.NewClient[GetBalancesRequest, GetBalancesResponse](
			httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...,
		),
		listCurrencies: connect.NewClient[ListCurrenciesRequest, ListCurrenciesResponse](
			httpClient, baseURL+LedgerServiceListCurrenciesProcedure, opts...,
		),
		settleDebts: connect.NewClient[SettleDebtsRequest, SettleDebtsResponse](
			httpClient, baseURL+LedgerServiceSettleDebtsProcedure, opts...,
		),
		listTransactions: connect.NewClient[ListTransactionsRequest, ListTransactionsResponse](
			httpClient, baseURL+LedgerServiceListTransactionsProcedure, opts...,
		),
	}
}

// RecordTransaction calls debtsolver.v1.LedgerService.RecordTransaction.
func (c *LedgerServiceClient) RecordTransaction(ctx context.Context, req *connect.Request[RecordTransactionRequest]) (*connect.Response[RecordTransactionResponse], error) {
	return c.recordTransaction.CallUnary(ctx, req)
}

// GetBalances calls debtsolver.v1.LedgerService.GetBalances.
func (c *LedgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

// ListCurrencies calls debtsolver.v1.LedgerService.ListCurrencies.
func (c *LedgerServiceClient) ListCurrencies(ctx context.Context, req *connect.Request[ListCurrenciesRequest]) (*connect.Response[ListCurrenciesResponse], error) {
	return c.listCurrencies.CallUnary(ctx, req)
}

// SettleDebts calls debtsolver.v1.LedgerService.SettleDebts.
func (c *LedgerServiceClient) SettleDebts(ctx context.Context, req *connect.Request[SettleDebtsRequest]) (*connect.Response[SettleDebtsResponse], error) {
	return c.settleDebts.CallUnary(ctx, req)
}

// ListTransactions calls debtsolver.v1.LedgerService.ListTransactions.
func (c *LedgerServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}
