// Package entitlement decides whether the user may open premium content by
// reconciling verified platform transactions with the local free trial.
package entitlement

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"cocoacalm/internal/models"
)

type Option func(*Resolver)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// Resolver owns the EntitlementState. Every mutation happens under mu, so
// purchases, restores and listener events are applied one at a time.
type Resolver struct {
	platform Platform
	verifier Verifier
	store    Store
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	state      models.EntitlementState
	trialStart *time.Time
	products   []Product
}

// New restores the cached display state. The cache is only a hint until the
// first CheckStatus.
func New(platform Platform, verifier Verifier, store Store, logger *zap.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		platform: platform,
		verifier: verifier,
		store:    store,
		logger:   logger.Named("entitlement"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	cache, err := store.GetStatusCache()
	if err != nil {
		r.logger.Warn("Failed to load subscription status", zap.Error(err))
	}
	r.state = cache.State()

	lifetime, err := store.HasLifetimePurchase()
	if err != nil {
		r.logger.Warn("Failed to load lifetime purchase flag", zap.Error(err))
	}
	if lifetime {
		r.markLifetimeLocked()
	}

	start, err := store.GetTrialStart()
	if err != nil {
		r.logger.Warn("Failed to load trial start", zap.Error(err))
	}
	r.trialStart = start

	return r
}

func (r *Resolver) State() models.EntitlementState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resolver) CanAccessPremium() bool {
	return r.State().CanAccessPremium()
}

func (r *Resolver) StatusText() string {
	return r.State().StatusText()
}

// Products returns the products loaded by LoadProducts, cheapest first.
func (r *Resolver) Products() []Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.products)
}

// LoadProducts fetches the recognized plans from the platform. A failure
// keeps the previously loaded products.
func (r *Resolver) LoadProducts(ctx context.Context) error {
	products, err := r.platform.Products(ctx, models.ProductIDs())
	if err != nil {
		r.logger.Warn("Failed to load products", zap.Error(err))
		return fmt.Errorf("load products: %w", err)
	}

	slices.SortStableFunc(products, func(a, b Product) int {
		return a.PriceCents - b.PriceCents
	})

	r.mu.Lock()
	r.products = products
	r.mu.Unlock()
	return nil
}

// StartTrial begins the free trial. It reports false, and changes nothing,
// when a trial is already running or the user is subscribed.
func (r *Resolver) StartTrial() (models.EntitlementState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := r.now()
	if !r.state.IsSubscribed {
		r.evaluateTrialLocked(start)
	}
	if r.state.IsInTrialPeriod || r.state.IsSubscribed || r.state.HasLifetimePurchase {
		return r.state, false
	}

	end := start.Add(models.TrialDuration)
	r.trialStart = &start
	if err := r.store.SetTrialStart(start); err != nil {
		r.logger.Error("Failed to save trial start", zap.Error(err))
	}

	r.state.IsInTrialPeriod = true
	r.state.TrialDaysRemaining = models.TrialDays
	r.state.SubscriptionExpiryDate = &end
	r.saveLocked()

	r.logger.Info("Free trial started", zap.Time("expires", end))
	return r.state, true
}

// CheckStatus recomputes the state from the platform's current entitlements,
// falling back to the trial when no verified subscription exists. A platform
// error leaves the state untouched.
func (r *Resolver) CheckStatus(ctx context.Context) (models.EntitlementState, error) {
	signed, err := r.platform.CurrentEntitlements(ctx)
	if err != nil {
		r.logger.Warn("Failed to enumerate entitlements", zap.Error(err))
		return r.State(), fmt.Errorf("current entitlements: %w", err)
	}

	now := r.now()
	var best *models.Transaction
	for _, s := range signed {
		tx, ok := r.verify(s)
		if !ok || !tx.ActiveAt(now) {
			continue
		}
		if _, known := models.PlanFromProductID(tx.ProductID); !known {
			r.logger.Debug("Ignoring unrecognized product", zap.String("product_id", tx.ProductID))
			continue
		}
		if best == nil || outranks(tx, *best) {
			best = &tx
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if best != nil {
		r.applyLocked(*best)
		return r.state, nil
	}

	r.state.IsSubscribed = r.state.HasLifetimePurchase
	r.state.CurrentPlan = nil
	r.state.SubscriptionExpiryDate = nil
	if r.state.HasLifetimePurchase {
		r.markLifetimeLocked()
		r.clearTrialLocked()
	} else {
		r.evaluateTrialLocked(now)
	}
	r.saveLocked()
	return r.state, nil
}

// outranks orders concurrent entitlements: lifetime first, then the latest
// expiry.
func outranks(a, b models.Transaction) bool {
	if a.ProductID == string(models.PlanLifetime) {
		return b.ProductID != string(models.PlanLifetime)
	}
	if b.ProductID == string(models.PlanLifetime) {
		return false
	}
	if a.ExpiresDate == nil || b.ExpiresDate == nil {
		return a.ExpiresDate == nil && b.ExpiresDate != nil
	}
	return a.ExpiresDate.After(*b.ExpiresDate)
}

// Purchase runs the platform purchase flow for plan. Cancellation and pending
// approval are not errors; the state only changes on a verified success.
func (r *Resolver) Purchase(ctx context.Context, plan models.Plan) (PurchaseStatus, error) {
	if _, ok := models.PlanFromProductID(string(plan)); !ok {
		return PurchaseCancelled, fmt.Errorf("%w: %s", ErrProductNotFound, plan)
	}

	result, err := r.platform.Purchase(ctx, plan.ProductID())
	if err != nil {
		r.logger.Error("Purchase failed", zap.String("product_id", plan.ProductID()), zap.Error(err))
		return PurchaseCancelled, fmt.Errorf("%w: %v", ErrPurchaseFailed, err)
	}

	switch result.Status {
	case PurchaseCancelled:
		r.logger.Info("Purchase cancelled", zap.String("product_id", plan.ProductID()))
		return PurchaseCancelled, nil
	case PurchasePending:
		r.logger.Info("Purchase pending approval", zap.String("product_id", plan.ProductID()))
		return PurchasePending, nil
	case PurchaseSuccess:
	default:
		return PurchaseCancelled, fmt.Errorf("%w: unknown purchase status %d", ErrPurchaseFailed, result.Status)
	}

	tx, err := r.verifier.Verify(result.Transaction)
	if err != nil {
		r.logger.Warn("Purchase verification failed", zap.Error(err))
		return PurchaseCancelled, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if tx.ProductID != plan.ProductID() {
		return PurchaseCancelled, fmt.Errorf("%w: transaction is for %s", ErrVerification, tx.ProductID)
	}
	if !tx.ActiveAt(r.now()) {
		r.logger.Warn("Purchase returned an inactive transaction",
			zap.String("transaction_id", tx.TransactionID))
		return PurchaseCancelled, fmt.Errorf("%w: transaction %s is not active", ErrVerification, tx.TransactionID)
	}

	r.mu.Lock()
	r.applyLocked(tx)
	r.mu.Unlock()

	r.finish(ctx, tx)
	r.logger.Info("Purchase completed",
		zap.String("product_id", tx.ProductID),
		zap.String("transaction_id", tx.TransactionID))
	return PurchaseSuccess, nil
}

// Restore re-syncs prior purchases with the platform and re-checks status.
func (r *Resolver) Restore(ctx context.Context) (models.EntitlementState, error) {
	if err := r.platform.Sync(ctx); err != nil {
		r.logger.Warn("Failed to sync purchases", zap.Error(err))
	}
	return r.CheckStatus(ctx)
}

// ApplyUpdate handles one transaction delivered by the platform outside a
// purchase call. Expired or revoked transactions trigger a full re-check.
func (r *Resolver) ApplyUpdate(ctx context.Context, signed SignedTransaction) error {
	tx, err := r.verifier.Verify(signed)
	if err != nil {
		r.logger.Warn("Transaction verification failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if _, ok := models.PlanFromProductID(tx.ProductID); !ok {
		r.logger.Debug("Ignoring unrecognized product", zap.String("product_id", tx.ProductID))
		return nil
	}

	if !tx.ActiveAt(r.now()) {
		r.logger.Info("Transaction no longer active", zap.String("transaction_id", tx.TransactionID))
		_, err := r.CheckStatus(ctx)
		return err
	}

	r.mu.Lock()
	r.applyLocked(tx)
	r.mu.Unlock()

	r.finish(ctx, tx)
	return nil
}

// Listen consumes platform transaction updates in delivery order until ctx
// is cancelled or the platform closes the stream. The returned channel is
// closed once the listener has exited.
func (r *Resolver) Listen(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	updates := r.platform.Updates()

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case signed, ok := <-updates:
				if !ok {
					return
				}
				if err := r.ApplyUpdate(ctx, signed); err != nil {
					r.logger.Warn("Failed to apply transaction update", zap.Error(err))
				}
			}
		}
	}()

	return done
}

func (r *Resolver) verify(s SignedTransaction) (models.Transaction, bool) {
	tx, err := r.verifier.Verify(s)
	if err != nil {
		r.logger.Warn("Failed to verify transaction", zap.Error(err))
		return models.Transaction{}, false
	}
	return tx, true
}

func (r *Resolver) finish(ctx context.Context, tx models.Transaction) {
	if err := r.platform.Finish(ctx, tx.TransactionID); err != nil {
		r.logger.Warn("Failed to finish transaction",
			zap.String("transaction_id", tx.TransactionID),
			zap.Error(err))
	}
}

// applyLocked moves to subscribed for a verified, recognized transaction.
// The trial is always cleared.
func (r *Resolver) applyLocked(tx models.Transaction) {
	plan, _ := models.PlanFromProductID(tx.ProductID)

	r.state.IsSubscribed = true
	r.state.CurrentPlan = &plan
	r.state.SubscriptionExpiryDate = tx.ExpiresDate
	r.clearTrialLocked()

	if plan == models.PlanLifetime && !r.state.HasLifetimePurchase {
		if err := r.store.SetLifetimePurchase(); err != nil {
			r.logger.Error("Failed to save lifetime purchase", zap.Error(err))
		}
		r.state.HasLifetimePurchase = true
	}
	// A recorded lifetime purchase outlives any recurring plan.
	if r.state.HasLifetimePurchase {
		r.markLifetimeLocked()
	}
	r.saveLocked()
}

func (r *Resolver) markLifetimeLocked() {
	plan := models.PlanLifetime
	r.state.HasLifetimePurchase = true
	r.state.IsSubscribed = true
	r.state.CurrentPlan = &plan
	r.state.SubscriptionExpiryDate = nil
	r.state.IsInTrialPeriod = false
	r.state.TrialDaysRemaining = 0
}

func (r *Resolver) clearTrialLocked() {
	r.state.IsInTrialPeriod = false
	r.state.TrialDaysRemaining = 0
}

func (r *Resolver) evaluateTrialLocked(now time.Time) {
	if r.trialStart == nil {
		r.clearTrialLocked()
		return
	}

	end := r.trialStart.Add(models.TrialDuration)
	if now.Before(end) {
		r.state.IsInTrialPeriod = true
		r.state.TrialDaysRemaining = daysUntil(now, end)
		r.state.SubscriptionExpiryDate = &end
		return
	}

	r.clearTrialLocked()
	r.state.SubscriptionExpiryDate = nil
}

// daysUntil rounds the remaining time up to whole days, so it is positive
// for as long as any time remains.
func daysUntil(now, end time.Time) int {
	const day = 24 * time.Hour
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + day - 1) / day)
}

func (r *Resolver) saveLocked() {
	if err := r.store.SaveStatusCache(r.state.Cache()); err != nil {
		r.logger.Error("Failed to save subscription status", zap.Error(err))
	}
}
