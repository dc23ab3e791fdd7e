package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"cocoacalm/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeVerifier accepts JSON-encoded transactions; anything prefixed with
// "forged:" fails verification.
type fakeVerifier struct{}

func (fakeVerifier) Verify(s SignedTransaction) (models.Transaction, error) {
	if strings.HasPrefix(string(s), "forged:") {
		return models.Transaction{}, errors.New("bad signature")
	}
	var tx models.Transaction
	if err := json.Unmarshal([]byte(s), &tx); err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

func sign(t *testing.T, tx models.Transaction) SignedTransaction {
	t.Helper()
	data, err := json.Marshal(tx)
	require.NoError(t, err)
	return SignedTransaction(data)
}

type fakePlatform struct {
	mu          sync.Mutex
	current     []SignedTransaction
	currentErr  error
	result      PurchaseResult
	purchaseErr error
	products    []Product
	productsErr error
	syncs       int
	finished    []string
	updates     chan SignedTransaction
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{updates: make(chan SignedTransaction)}
}

func (f *fakePlatform) Products(context.Context, []string) ([]Product, error) {
	return f.products, f.productsErr
}

func (f *fakePlatform) Purchase(context.Context, string) (PurchaseResult, error) {
	return f.result, f.purchaseErr
}

func (f *fakePlatform) CurrentEntitlements(context.Context) ([]SignedTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.currentErr
}

func (f *fakePlatform) Finish(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, id)
	return nil
}

func (f *fakePlatform) Sync(context.Context) error {
	f.syncs++
	return nil
}

func (f *fakePlatform) Updates() <-chan SignedTransaction {
	return f.updates
}

type memStore struct {
	cache      models.StatusCache
	trialStart *time.Time
	lifetime   bool
	saves      int
}

func (m *memStore) GetStatusCache() (models.StatusCache, error) { return m.cache, nil }
func (m *memStore) SaveStatusCache(c models.StatusCache) error {
	m.saves++
	m.cache = c
	return nil
}
func (m *memStore) GetTrialStart() (*time.Time, error) { return m.trialStart, nil }
func (m *memStore) SetTrialStart(t time.Time) error {
	m.trialStart = &t
	return nil
}
func (m *memStore) HasLifetimePurchase() (bool, error) { return m.lifetime, nil }
func (m *memStore) SetLifetimePurchase() error {
	m.lifetime = true
	return nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var epoch = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Resolver, *fakePlatform, *memStore, *clock) {
	t.Helper()
	p := newFakePlatform()
	s := &memStore{}
	c := &clock{t: epoch}
	r := New(p, fakeVerifier{}, s, zap.NewNop(), WithClock(c.now))
	return r, p, s, c
}

func monthly(t *testing.T, id string, expires time.Time) SignedTransaction {
	return sign(t, models.Transaction{
		TransactionID: id,
		ProductID:     string(models.PlanMonthly),
		PurchaseDate:  expires.AddDate(0, -1, 0),
		ExpiresDate:   &expires,
	})
}

func TestStartsFree(t *testing.T) {
	r, _, _, _ := setup(t)
	state, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusFree, state.Status())
	assert.False(t, r.CanAccessPremium())
}

func TestTrialLifecycle(t *testing.T) {
	r, _, store, c := setup(t)

	state, started := r.StartTrial()
	require.True(t, started)
	assert.True(t, state.IsInTrialPeriod)
	assert.Equal(t, 7, state.TrialDaysRemaining)
	require.NotNil(t, state.SubscriptionExpiryDate)
	assert.Equal(t, epoch.Add(7*24*time.Hour), *state.SubscriptionExpiryDate)
	assert.True(t, r.CanAccessPremium())
	require.NotNil(t, store.trialStart)
	assert.True(t, store.cache.IsInTrial)

	_, again := r.StartTrial()
	assert.False(t, again, "trial must not restart while running")

	c.advance(36 * time.Hour)
	state, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, state.TrialDaysRemaining)
	assert.True(t, r.CanAccessPremium())

	c.advance(5*24*time.Hour + 11*time.Hour)
	state, err = r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, state.TrialDaysRemaining)
	assert.True(t, r.CanAccessPremium())

	c.advance(time.Hour)
	state, err = r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, state.IsInTrialPeriod)
	assert.Zero(t, state.TrialDaysRemaining)
	assert.False(t, r.CanAccessPremium())
}

func TestTrialExpiredEightDaysLater(t *testing.T) {
	r, _, _, c := setup(t)
	r.StartTrial()

	c.advance(8 * 24 * time.Hour)
	state, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusFree, state.Status())
	assert.False(t, r.CanAccessPremium())
}

func TestSubscriptionBeatsTrial(t *testing.T) {
	r, p, _, _ := setup(t)
	r.StartTrial()

	p.current = []SignedTransaction{monthly(t, "t1", epoch.AddDate(0, 1, 0))}
	state, err := r.CheckStatus(context.Background())
	require.NoError(t, err)

	assert.True(t, state.IsSubscribed)
	assert.False(t, state.IsInTrialPeriod)
	require.NotNil(t, state.CurrentPlan)
	assert.Equal(t, models.PlanMonthly, *state.CurrentPlan)
	assert.Equal(t, epoch.AddDate(0, 1, 0), *state.SubscriptionExpiryDate)

	_, started := r.StartTrial()
	assert.False(t, started)
}

func TestCheckStatusIsIdempotent(t *testing.T) {
	r, p, _, _ := setup(t)
	p.current = []SignedTransaction{monthly(t, "t1", epoch.AddDate(0, 1, 0))}

	first, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	second, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCheckStatusFailsClosed(t *testing.T) {
	r, p, _, _ := setup(t)
	expired := epoch.Add(-time.Hour)
	p.current = []SignedTransaction{
		"forged:" + monthly(t, "t1", epoch.AddDate(0, 1, 0)),
		monthly(t, "t2", expired),
		sign(t, models.Transaction{TransactionID: "t3", ProductID: "cocoa_calm_daily"}),
	}

	state, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, state.IsSubscribed)
	assert.False(t, r.CanAccessPremium())
}

func TestSubscriptionLapsesToFree(t *testing.T) {
	r, p, _, c := setup(t)
	p.current = []SignedTransaction{monthly(t, "t1", epoch.Add(24*time.Hour))}
	_, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	require.True(t, r.CanAccessPremium())

	c.advance(25 * time.Hour)
	state, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusFree, state.Status())
	assert.Nil(t, state.CurrentPlan)
}

func TestLifetimePersists(t *testing.T) {
	r, p, store, _ := setup(t)
	p.current = []SignedTransaction{sign(t, models.Transaction{TransactionID: "life", ProductID: string(models.PlanLifetime)})}

	state, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusLifetime, state.Status())
	assert.Nil(t, state.SubscriptionExpiryDate)
	assert.True(t, store.lifetime)

	// The platform forgetting the purchase never downgrades a lifetime user.
	p.current = nil
	state, err = r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusLifetime, state.Status())
	assert.True(t, r.CanAccessPremium())

	reopened := New(p, fakeVerifier{}, store, zap.NewNop(), WithClock(func() time.Time { return epoch }))
	assert.True(t, reopened.CanAccessPremium())
	assert.Equal(t, models.StatusLifetime, reopened.State().Status())
}

func TestLifetimeOutranksRecurring(t *testing.T) {
	r, p, _, _ := setup(t)
	p.current = []SignedTransaction{
		monthly(t, "m", epoch.AddDate(0, 1, 0)),
		sign(t, models.Transaction{TransactionID: "life", ProductID: string(models.PlanLifetime)}),
		monthly(t, "m2", epoch.AddDate(0, 2, 0)),
	}

	state, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state.CurrentPlan)
	assert.Equal(t, models.PlanLifetime, *state.CurrentPlan)
}

func TestLatestExpiryWins(t *testing.T) {
	r, p, _, _ := setup(t)
	later := epoch.AddDate(0, 2, 0)
	p.current = []SignedTransaction{
		monthly(t, "m", epoch.AddDate(0, 1, 0)),
		monthly(t, "m2", later),
	}

	state, err := r.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, later, *state.SubscriptionExpiryDate)
}

func TestPlatformErrorKeepsState(t *testing.T) {
	r, p, _, _ := setup(t)
	p.current = []SignedTransaction{monthly(t, "t1", epoch.AddDate(0, 1, 0))}
	before, err := r.CheckStatus(context.Background())
	require.NoError(t, err)

	p.currentErr = errors.New("network down")
	after, err := r.CheckStatus(context.Background())
	assert.Error(t, err)
	assert.Equal(t, before, after)
}

func TestPurchaseOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		r, p, _, _ := setup(t)
		r.StartTrial()
		p.result = PurchaseResult{Status: PurchaseSuccess, Transaction: monthly(t, "buy", epoch.AddDate(0, 1, 0))}

		status, err := r.Purchase(ctx, models.PlanMonthly)
		require.NoError(t, err)
		assert.Equal(t, PurchaseSuccess, status)
		state := r.State()
		assert.True(t, state.IsSubscribed)
		assert.False(t, state.IsInTrialPeriod)
		assert.Equal(t, []string{"buy"}, p.finished)
	})

	t.Run("cancelled", func(t *testing.T) {
		r, p, _, _ := setup(t)
		p.result = PurchaseResult{Status: PurchaseCancelled}

		status, err := r.Purchase(ctx, models.PlanAnnual)
		require.NoError(t, err)
		assert.Equal(t, PurchaseCancelled, status)
		assert.False(t, r.CanAccessPremium())
	})

	t.Run("pending", func(t *testing.T) {
		r, p, _, _ := setup(t)
		p.result = PurchaseResult{Status: PurchasePending}

		status, err := r.Purchase(ctx, models.PlanAnnual)
		require.NoError(t, err)
		assert.Equal(t, PurchasePending, status)
		assert.False(t, r.CanAccessPremium())
	})

	t.Run("verification failure", func(t *testing.T) {
		r, p, _, _ := setup(t)
		p.result = PurchaseResult{Status: PurchaseSuccess, Transaction: "forged:" + monthly(t, "buy", epoch.AddDate(0, 1, 0))}

		status, err := r.Purchase(ctx, models.PlanMonthly)
		assert.ErrorIs(t, err, ErrVerification)
		assert.NotEqual(t, PurchaseSuccess, status)
		assert.False(t, r.CanAccessPremium())
		assert.Empty(t, p.finished)
	})

	t.Run("expired transaction", func(t *testing.T) {
		r, p, _, _ := setup(t)
		p.result = PurchaseResult{Status: PurchaseSuccess, Transaction: monthly(t, "old", epoch.AddDate(0, 0, -1))}

		status, err := r.Purchase(ctx, models.PlanMonthly)
		assert.ErrorIs(t, err, ErrVerification)
		assert.NotEqual(t, PurchaseSuccess, status)
		assert.False(t, r.CanAccessPremium())
		assert.Empty(t, p.finished)
	})

	t.Run("revoked transaction", func(t *testing.T) {
		r, p, _, _ := setup(t)
		revoked := epoch.Add(-time.Hour)
		p.result = PurchaseResult{Status: PurchaseSuccess, Transaction: sign(t, models.Transaction{
			TransactionID:  "refunded",
			ProductID:      string(models.PlanLifetime),
			PurchaseDate:   epoch.AddDate(0, -1, 0),
			RevocationDate: &revoked,
		})}

		_, err := r.Purchase(ctx, models.PlanLifetime)
		assert.ErrorIs(t, err, ErrVerification)
		assert.False(t, r.State().HasLifetimePurchase)
	})

	t.Run("platform failure", func(t *testing.T) {
		r, p, _, _ := setup(t)
		r.StartTrial()
		before := r.State()
		p.purchaseErr = errors.New("store unavailable")

		_, err := r.Purchase(ctx, models.PlanMonthly)
		assert.ErrorIs(t, err, ErrPurchaseFailed)
		assert.Equal(t, before, r.State())
	})

	t.Run("unknown plan", func(t *testing.T) {
		r, _, _, _ := setup(t)
		_, err := r.Purchase(ctx, models.Plan("cocoa_calm_daily"))
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRestoreSyncsThenChecks(t *testing.T) {
	r, p, _, _ := setup(t)
	p.current = []SignedTransaction{monthly(t, "t1", epoch.AddDate(0, 1, 0))}

	state, err := r.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.syncs)
	assert.True(t, state.IsSubscribed)
}

func TestLoadProductsSortsByPrice(t *testing.T) {
	r, p, _, _ := setup(t)
	p.products = []Product{
		{ID: string(models.PlanLifetime), PriceCents: 19999},
		{ID: string(models.PlanWeekly), PriceCents: 499},
		{ID: string(models.PlanAnnual), PriceCents: 7999},
	}
	require.NoError(t, r.LoadProducts(context.Background()))
	got := r.Products()
	require.Len(t, got, 3)
	assert.Equal(t, string(models.PlanWeekly), got[0].ID)
	assert.Equal(t, string(models.PlanLifetime), got[2].ID)

	p.productsErr = errors.New("offline")
	assert.Error(t, r.LoadProducts(context.Background()))
	assert.Len(t, r.Products(), 3)
}

func TestListenAppliesUpdatesInOrder(t *testing.T) {
	r, p, _, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := r.Listen(ctx)

	p.updates <- "forged:whatever"
	p.updates <- monthly(t, "u1", epoch.AddDate(0, 1, 0))
	p.updates <- sign(t, models.Transaction{
		TransactionID: "u2",
		ProductID:     string(models.PlanAnnual),
		ExpiresDate:   ptr(epoch.AddDate(1, 0, 0)),
	})

	cancel()
	<-done

	state := r.State()
	require.NotNil(t, state.CurrentPlan)
	assert.Equal(t, models.PlanAnnual, *state.CurrentPlan)
	assert.Equal(t, []string{"u1", "u2"}, p.finished)
}

func TestListenStopsWhenStreamCloses(t *testing.T) {
	r, p, _, _ := setup(t)
	done := r.Listen(context.Background())
	close(p.updates)
	<-done
}

func TestRevocationUpdateDowngrades(t *testing.T) {
	r, p, _, _ := setup(t)
	p.current = []SignedTransaction{monthly(t, "t1", epoch.AddDate(0, 1, 0))}
	_, err := r.CheckStatus(context.Background())
	require.NoError(t, err)

	revoked := epoch.Add(-time.Minute)
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	require.NoError(t, r.ApplyUpdate(context.Background(), sign(t, models.Transaction{
		TransactionID:  "t1",
		ProductID:      string(models.PlanMonthly),
		ExpiresDate:    ptr(epoch.AddDate(0, 1, 0)),
		RevocationDate: &revoked,
	})))

	assert.False(t, r.CanAccessPremium())
}

func TestCacheRestoredOnStartup(t *testing.T) {
	p := newFakePlatform()
	store := &memStore{cache: models.StatusCache{IsSubscribed: true, Tier: models.TierPremium}}
	r := New(p, fakeVerifier{}, store, zap.NewNop())
	assert.True(t, r.CanAccessPremium())
}

func ptr[T any](v T) *T { return &v }
