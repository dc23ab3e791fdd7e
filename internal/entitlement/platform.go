package entitlement

import (
	"context"
	"errors"
	"time"

	"cocoacalm/internal/models"
)

var (
	// ErrVerification means a transaction could not be proven authentic.
	ErrVerification = errors.New("failed to verify purchase")
	// ErrProductNotFound means the plan is not one the app sells.
	ErrProductNotFound = errors.New("product not found")
	// ErrPurchaseFailed wraps platform errors raised during a purchase.
	ErrPurchaseFailed = errors.New("purchase failed")
)

// SignedTransaction is an opaque platform transaction that must be verified
// before it is trusted.
type SignedTransaction string

type PurchaseStatus int

const (
	PurchaseSuccess PurchaseStatus = iota
	PurchaseCancelled
	PurchasePending
)

func (s PurchaseStatus) String() string {
	switch s {
	case PurchaseSuccess:
		return "success"
	case PurchaseCancelled:
		return "cancelled"
	case PurchasePending:
		return "pending"
	default:
		return "unknown"
	}
}

type PurchaseResult struct {
	Status      PurchaseStatus
	Transaction SignedTransaction // set on success only
}

type Product struct {
	ID          string
	DisplayName string
	Price       string
	PriceCents  int
}

// Platform is the purchase and entitlement API of the app store.
type Platform interface {
	// Products looks up the catalog entries for ids.
	Products(ctx context.Context, ids []string) ([]Product, error)
	// Purchase starts a purchase flow and blocks until the platform answers.
	Purchase(ctx context.Context, productID string) (PurchaseResult, error)
	// CurrentEntitlements enumerates every transaction the platform considers
	// currently valid.
	CurrentEntitlements(ctx context.Context) ([]SignedTransaction, error)
	// Finish acknowledges a delivered transaction.
	Finish(ctx context.Context, transactionID string) error
	// Sync asks the platform to re-sync prior purchases.
	Sync(ctx context.Context) error
	// Updates delivers transaction updates for the process lifetime.
	Updates() <-chan SignedTransaction
}

type Verifier interface {
	Verify(SignedTransaction) (models.Transaction, error)
}

// Store persists the display cache and the locally tracked grants.
type Store interface {
	GetStatusCache() (models.StatusCache, error)
	SaveStatusCache(models.StatusCache) error
	GetTrialStart() (*time.Time, error)
	SetTrialStart(time.Time) error
	HasLifetimePurchase() (bool, error)
	SetLifetimePurchase() error
}
