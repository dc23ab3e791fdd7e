package storekit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cocoacalm/internal/entitlement"
	"cocoacalm/internal/models"
	"cocoacalm/internal/storage"
)

// Outcome decides how the local store answers a purchase request.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeCancel  Outcome = "cancel"
	OutcomePending Outcome = "pending"
	OutcomeFail    Outcome = "fail"
)

func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomeSuccess, OutcomeCancel, OutcomePending, OutcomeFail:
		return o, nil
	case "":
		return OutcomeSuccess, nil
	default:
		return "", fmt.Errorf("unknown purchase outcome %q", s)
	}
}

// ErrStoreUnavailable is what an OutcomeFail purchase returns.
var ErrStoreUnavailable = errors.New("storekit: store unavailable")

const updatesBuffer = 16

// Ledger persists the transaction ledger.
type Ledger interface {
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
}

type record struct {
	Transaction models.Transaction `json:"transaction"`
	Pending     bool               `json:"pending,omitempty"`
	Finished    bool               `json:"finished,omitempty"`
}

type Option func(*LocalStore)

func WithClock(now func() time.Time) Option {
	return func(s *LocalStore) { s.now = now }
}

func WithOutcome(o Outcome) Option {
	return func(s *LocalStore) { s.outcome = o }
}

// LocalStore implements entitlement.Platform on top of the local key-value
// store.
type LocalStore struct {
	signer  *Signer
	ledger  Ledger
	logger  *zap.Logger
	now     func() time.Time
	updates chan entitlement.SignedTransaction

	mu      sync.Mutex
	outcome Outcome
	records []record
}

func NewLocalStore(ledger Ledger, signer *Signer, logger *zap.Logger, opts ...Option) *LocalStore {
	s := &LocalStore{
		signer:  signer,
		ledger:  ledger,
		logger:  logger.Named("storekit"),
		now:     time.Now,
		outcome: OutcomeSuccess,
		updates: make(chan entitlement.SignedTransaction, updatesBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mu.Lock()
	s.loadLocked()
	s.mu.Unlock()
	return s
}

// SetOutcome changes how later purchases are answered.
func (s *LocalStore) SetOutcome(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcome = o
}

func (s *LocalStore) Products(ctx context.Context, ids []string) ([]entitlement.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var products []entitlement.Product
	for _, id := range ids {
		plan, ok := models.PlanFromProductID(id)
		if !ok {
			continue
		}
		products = append(products, entitlement.Product{
			ID:          plan.ProductID(),
			DisplayName: plan.DisplayName(),
			Price:       plan.Price(),
			PriceCents:  plan.PriceCents(),
		})
	}
	return products, nil
}

func (s *LocalStore) Purchase(ctx context.Context, productID string) (entitlement.PurchaseResult, error) {
	if err := ctx.Err(); err != nil {
		return entitlement.PurchaseResult{}, err
	}
	plan, ok := models.PlanFromProductID(productID)
	if !ok {
		return entitlement.PurchaseResult{}, fmt.Errorf("%w: %s", entitlement.ErrProductNotFound, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.outcome {
	case OutcomeCancel:
		return entitlement.PurchaseResult{Status: entitlement.PurchaseCancelled}, nil
	case OutcomeFail:
		return entitlement.PurchaseResult{}, ErrStoreUnavailable
	case OutcomePending:
		s.records = append(s.records, record{Transaction: s.newTransaction(plan), Pending: true})
		s.saveLocked()
		s.logger.Info("Purchase awaiting approval", zap.String("product_id", productID))
		return entitlement.PurchaseResult{Status: entitlement.PurchasePending}, nil
	}

	tx := s.newTransaction(plan)
	signed, err := s.signer.Sign(tx)
	if err != nil {
		return entitlement.PurchaseResult{}, err
	}
	s.records = append(s.records, record{Transaction: tx})
	s.saveLocked()
	return entitlement.PurchaseResult{Status: entitlement.PurchaseSuccess, Transaction: signed}, nil
}

// CurrentEntitlements returns signed copies of every settled transaction
// that is neither expired nor revoked.
func (s *LocalStore) CurrentEntitlements(ctx context.Context) ([]entitlement.SignedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []entitlement.SignedTransaction
	for _, r := range s.records {
		if r.Pending || !r.Transaction.ActiveAt(now) {
			continue
		}
		signed, err := s.signer.Sign(r.Transaction)
		if err != nil {
			return nil, err
		}
		out = append(out, signed)
	}
	return out, nil
}

func (s *LocalStore) Finish(_ context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].Transaction.TransactionID == transactionID {
			s.records[i].Finished = true
			s.saveLocked()
			return nil
		}
	}
	return fmt.Errorf("storekit: unknown transaction %s", transactionID)
}

// Sync reloads the ledger from durable storage.
func (s *LocalStore) Sync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return nil
}

func (s *LocalStore) Updates() <-chan entitlement.SignedTransaction {
	return s.updates
}

// ApprovePending settles every pending purchase and delivers each one on
// the update stream. It returns the number approved.
func (s *LocalStore) ApprovePending(ctx context.Context) (int, error) {
	s.mu.Lock()
	now := s.now()
	var approved []entitlement.SignedTransaction
	for i := range s.records {
		r := &s.records[i]
		if !r.Pending {
			continue
		}
		plan, _ := models.PlanFromProductID(r.Transaction.ProductID)
		r.Pending = false
		r.Transaction.PurchaseDate = now
		r.Transaction.ExpiresDate = expiry(plan, now)
		signed, err := s.signer.Sign(r.Transaction)
		if err != nil {
			s.mu.Unlock()
			return 0, err
		}
		approved = append(approved, signed)
	}
	if len(approved) > 0 {
		s.saveLocked()
	}
	s.mu.Unlock()

	return len(approved), s.deliver(ctx, approved)
}

// Revoke marks a transaction refunded and announces it.
func (s *LocalStore) Revoke(ctx context.Context, transactionID string) error {
	s.mu.Lock()
	var signed entitlement.SignedTransaction
	found := false
	for i := range s.records {
		r := &s.records[i]
		if r.Transaction.TransactionID != transactionID {
			continue
		}
		now := s.now()
		r.Transaction.RevocationDate = &now
		var err error
		signed, err = s.signer.Sign(r.Transaction)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		found = true
		s.saveLocked()
		break
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("storekit: unknown transaction %s", transactionID)
	}
	return s.deliver(ctx, []entitlement.SignedTransaction{signed})
}

// Transactions lists the ledger, oldest first.
func (s *LocalStore) Transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Transaction)
	}
	return out
}

func (s *LocalStore) deliver(ctx context.Context, signed []entitlement.SignedTransaction) error {
	for _, tx := range signed {
		select {
		case s.updates <- tx:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *LocalStore) newTransaction(plan models.Plan) models.Transaction {
	now := s.now()
	id := uuid.New().String()
	return models.Transaction{
		TransactionID:         id,
		OriginalTransactionID: id,
		ProductID:             plan.ProductID(),
		PurchaseDate:          now,
		ExpiresDate:           expiry(plan, now),
	}
}

func expiry(plan models.Plan, from time.Time) *time.Time {
	years, months, days, recurring := plan.Period()
	if !recurring {
		return nil
	}
	t := from.AddDate(years, months, days)
	return &t
}

func (s *LocalStore) loadLocked() {
	var records []record
	if err := s.ledger.GetJSON(storage.KeyTransactions, &records); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to load transaction ledger", zap.Error(err))
		}
		return
	}
	s.records = records
}

func (s *LocalStore) saveLocked() {
	if err := s.ledger.SetJSON(storage.KeyTransactions, s.records); err != nil {
		s.logger.Error("Failed to save transaction ledger", zap.Error(err))
	}
}
