// Package service implements the settlement RPC service on top of the core
// ledger and a journal store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/mmynk/debtsolver"
	"github.com/mmynk/debtsolver/internal/metrics"
	"github.com/mmynk/debtsolver/internal/middleware"
	"github.com/mmynk/debtsolver/internal/rpc"
	"github.com/mmynk/debtsolver/internal/storage"
	"github.com/mmynk/debtsolver/money"
)

// Ensure LedgerService implements the wire contract
var _ rpc.LedgerServiceHandler = (*LedgerService)(nil)

// Options configures optional service dependencies. The zero value works:
// no cache, discarded metrics, pairwise settlement.
type Options struct {
	// Logger receives request-level log lines; defaults to slog.Default().
	Logger *slog.Logger
	// Cache short-circuits duplicate client transaction ids before they
	// reach the store. Nil disables the fast path; the store's uniqueness
	// check still applies.
	Cache *redis.Client
	// Metrics collectors; defaults to a private registry nobody scrapes.
	Metrics *metrics.Metrics
	// DefaultGroupSize applies when requests do not pick one; minimum and
	// default 2.
	DefaultGroupSize int
	// IdempotencyTTL bounds cache reservations; defaults to 24h.
	IdempotencyTTL time.Duration
}

// LedgerService answers the debtsolver.v1.LedgerService procedures. State
// lives in two places: the journal store is authoritative, and an in-memory
// ledger built from it serves balance and settlement reads. Load rebuilds
// the ledger, RecordTransaction keeps both in step.
type LedgerService struct {
	store            storage.Store
	ledger           *debtsolver.Ledger
	logger           *slog.Logger
	cache            *redis.Client
	metrics          *metrics.Metrics
	defaultGroupSize int
	idempotencyTTL   time.Duration
}

// NewLedgerService creates the service against its journal store.
func NewLedgerService(store storage.Store, opts Options) *LedgerService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if opts.DefaultGroupSize < 2 {
		opts.DefaultGroupSize = 2
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	return &LedgerService{
		store:            store,
		ledger:           debtsolver.NewLedger(),
		logger:           opts.Logger,
		cache:            opts.Cache,
		metrics:          opts.Metrics,
		defaultGroupSize: opts.DefaultGroupSize,
		idempotencyTTL:   opts.IdempotencyTTL,
	}
}

// Load rebuilds the in-memory ledger from the journal. Call it once at
// startup, before the service starts answering requests.
func (s *LedgerService) Load(ctx context.Context) error {
	records, err := s.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	ledger := debtsolver.NewLedger()
	for _, rec := range records {
		tx, err := transactionFromRecord(rec)
		if err != nil {
			return fmt.Errorf("replay transaction %s: %w", rec.ID, err)
		}
		if err := ledger.AddTransaction(tx); err != nil {
			return fmt.Errorf("replay transaction %s: %w", rec.ID, err)
		}
	}
	s.ledger = ledger

	s.logger.Info("ledger loaded",
		"transactions", len(records),
		"currencies", len(ledger.Currencies()),
	)
	return nil
}

// RecordTransaction validates one obligation, journals it and folds it into
// the ledger.
func (s *LedgerService) RecordTransaction(ctx context.Context, req *connect.Request[rpc.RecordTransactionRequest]) (*connect.Response[rpc.RecordTransactionResponse], error) {
	msg := req.Msg

	amount, err := money.FromString(msg.Amount, msg.Currency)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	tx, err := debtsolver.NewSharedTransaction(toParties(msg.Debtors), toParties(msg.Creditors), amount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if msg.ClientTxID != "" && s.cache != nil {
		reserved, err := s.cache.SetNX(ctx, idempotencyKey(msg.ClientTxID), "reserved", s.idempotencyTTL).Result()
		if err != nil {
			// Cache loss degrades to the store's uniqueness check.
			s.logger.Warn("idempotency cache unavailable", "error", err)
		} else if !reserved {
			return nil, s.duplicateError(ctx, msg.ClientTxID)
		}
	}

	// Journal the deduplicated party order so replay splits shares exactly
	// the way the live fold below does.
	rec := &storage.TransactionRecord{
		ClientTxID: msg.ClientTxID,
		Debtors:    fromParties(tx.Debtors()),
		Creditors:  fromParties(tx.Creditors()),
		Amount:     amount.Amount().String(),
		Currency:   amount.Currency(),
		Note:       msg.Note,
	}
	if err := s.store.RecordTransaction(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicateTransaction) {
			return nil, s.duplicateError(ctx, msg.ClientTxID)
		}
		s.releaseReservation(msg.ClientTxID)
		s.logger.Error("RecordTransaction store write failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	if msg.ClientTxID != "" && s.cache != nil {
		if err := s.cache.Set(ctx, idempotencyKey(msg.ClientTxID), rec.ID, s.idempotencyTTL).Err(); err != nil {
			s.logger.Warn("idempotency cache write failed", "error", err)
		}
	}

	if err := s.ledger.AddTransaction(tx); err != nil {
		// Unreachable for a constructor-validated transaction.
		s.logger.Error("RecordTransaction ledger fold failed", "transaction_id", rec.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.metrics.TransactionsRecorded.WithLabelValues(amount.Currency()).Inc()
	s.logger.Info("transaction recorded",
		"transaction_id", rec.ID,
		"amount", amount.String(),
		"debtors", len(rec.Debtors),
		"creditors", len(rec.Creditors),
		"principal", middleware.Principal(ctx),
	)
	return connect.NewResponse(&rpc.RecordTransactionResponse{TransactionID: rec.ID}), nil
}

// duplicateError reports a reused client transaction id, naming the original
// record when the journal still has it.
func (s *LedgerService) duplicateError(ctx context.Context, clientTxID string) error {
	s.metrics.DuplicateTransactions.Inc()
	if rec, err := s.store.GetByClientTxID(ctx, clientTxID); err == nil {
		return connect.NewError(connect.CodeAlreadyExists,
			fmt.Errorf("client_tx_id %q already recorded as transaction %s", clientTxID, rec.ID))
	}
	return connect.NewError(connect.CodeAlreadyExists,
		fmt.Errorf("client_tx_id %q is already being recorded", clientTxID))
}

// releaseReservation drops the idempotency reservation after a failed write
// so the same client transaction id can be retried. Best effort: the request
// context may already be gone, so the delete runs on its own deadline.
func (s *LedgerService) releaseReservation(clientTxID string) {
	if clientTxID == "" || s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Del(ctx, idempotencyKey(clientTxID)).Err(); err != nil {
		s.logger.Warn("idempotency reservation release failed", "error", err)
	}
}

// GetBalances returns the non-zero net balances of one currency, sorted by
// party.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[rpc.GetBalancesRequest]) (*connect.Response[rpc.GetBalancesResponse], error) {
	code := strings.ToUpper(strings.TrimSpace(req.Msg.Currency))
	if code == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("currency required"))
	}

	balances := s.ledger.NetBalances(code)
	out := make([]rpc.PartyBalance, 0, len(balances))
	for party, m := range balances {
		out = append(out, rpc.PartyBalance{Party: string(party), Amount: m.Amount().String(), Display: m.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Party < out[j].Party })

	return connect.NewResponse(&rpc.GetBalancesResponse{Currency: code, Balances: out}), nil
}

// ListCurrencies returns the currencies with outstanding balances.
func (s *LedgerService) ListCurrencies(ctx context.Context, _ *connect.Request[rpc.ListCurrenciesRequest]) (*connect.Response[rpc.ListCurrenciesResponse], error) {
	return connect.NewResponse(&rpc.ListCurrenciesResponse{Currencies: s.ledger.Currencies()}), nil
}

// SettleDebts computes the payments that would clear the ledger.
func (s *LedgerService) SettleDebts(ctx context.Context, req *connect.Request[rpc.SettleDebtsRequest]) (*connect.Response[rpc.SettleDebtsResponse], error) {
	size := req.Msg.MaxGroupSize
	if size == 0 {
		size = s.defaultGroupSize
	}

	start := time.Now()
	var payments []debtsolver.Payment
	var err error
	if req.Msg.Currency == "" {
		payments, err = s.ledger.Settle(size)
	} else {
		payments, err = s.ledger.SettleCurrency(req.Msg.Currency, size)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	s.metrics.SettlementRuns.Inc()
	s.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	s.metrics.SettlementPayments.Observe(float64(len(payments)))

	out := make([]rpc.PaymentMessage, len(payments))
	for i, p := range payments {
		out[i] = rpc.PaymentMessage{
			From:     toShares(p.From),
			To:       toShares(p.To),
			Amount:   p.Amount.Amount().String(),
			Currency: p.Amount.Currency(),
			Display:  p.String(),
		}
	}
	return connect.NewResponse(&rpc.SettleDebtsResponse{Payments: out}), nil
}

// ListTransactions returns the journal in insertion order.
func (s *LedgerService) ListTransactions(ctx context.Context, _ *connect.Request[rpc.ListTransactionsRequest]) (*connect.Response[rpc.ListTransactionsResponse], error) {
	records, err := s.store.ListTransactions(ctx)
	if err != nil {
		s.logger.Error("ListTransactions store read failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]rpc.TransactionMessage, len(records))
	for i, rec := range records {
		out[i] = rpc.TransactionMessage{
			TransactionID: rec.ID,
			ClientTxID:    rec.ClientTxID,
			Debtors:       rec.Debtors,
			Creditors:     rec.Creditors,
			Amount:        rec.Amount,
			Currency:      rec.Currency,
			Note:          rec.Note,
			CreatedAt:     rec.CreatedAt,
		}
	}
	return connect.NewResponse(&rpc.ListTransactionsResponse{Transactions: out}), nil
}

// transactionFromRecord rebuilds the domain transaction a journal row was
// created from.
func transactionFromRecord(rec *storage.TransactionRecord) (debtsolver.Transaction, error) {
	amount, err := money.FromString(rec.Amount, rec.Currency)
	if err != nil {
		return debtsolver.Transaction{}, err
	}
	return debtsolver.NewSharedTransaction(toParties(rec.Debtors), toParties(rec.Creditors), amount)
}

func idempotencyKey(clientTxID string) string {
	return "debtsolver:idempotency:" + clientTxID
}

func toParties(names []string) []debtsolver.Party {
	parties := make([]debtsolver.Party, len(names))
	for i, n := range names {
		parties[i] = debtsolver.Party(n)
	}
	return parties
}

func fromParties(parties []debtsolver.Party) []string {
	names := make([]string, len(parties))
	for i, p := range parties {
		names[i] = string(p)
	}
	return names
}

func toShares(shares []debtsolver.Share) []rpc.PaymentShare {
	out := make([]rpc.PaymentShare, len(shares))
	for i, s := range shares {
		out[i] = rpc.PaymentShare{Party: string(s.Party), Amount: s.Amount.Amount().String()}
	}
	return out
}
