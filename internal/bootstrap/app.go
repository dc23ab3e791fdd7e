// Package bootstrap is the single place where services are constructed and
// wired together.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cocoacalm/internal/catalog"
	"cocoacalm/internal/config"
	"cocoacalm/internal/entitlement"
	"cocoacalm/internal/logging"
	"cocoacalm/internal/progress"
	"cocoacalm/internal/storage"
	"cocoacalm/internal/storekit"
)

type App struct {
	Env          config.Env
	Storage      *storage.Storage
	Logger       *zap.Logger
	Catalog      *catalog.Catalog
	Tracker      *progress.Tracker
	StoreKit     *storekit.LocalStore
	Entitlements *entitlement.Resolver

	cancel context.CancelFunc
	done   <-chan struct{}
}

type options struct {
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*options)

// WithLogger replaces the file logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock drives every service from the same clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New opens storage and builds every service. Nothing talks to the purchase
// platform until Start.
func New(env config.Env, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	outcome, err := storekit.ParseOutcome(env.StoreOutcome)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	ownLogger := logger == nil
	if ownLogger {
		logger, err = logging.New(env.DataDir, env.LogLevel)
		if err != nil {
			return nil, err
		}
	}

	store, err := storage.Open(env.DataDir, env.Storage)
	if err != nil {
		logger.Error("Failed to open storage",
			zap.String("storage", env.Storage),
			zap.Error(err))
		if ownLogger {
			_ = logger.Sync()
		}
		return nil, fmt.Errorf("open storage: %w", err)
	}

	cat := catalog.Default()
	key := []byte(env.StoreKey)
	platform := storekit.NewLocalStore(store, storekit.NewSigner(key), logger,
		storekit.WithClock(o.now), storekit.WithOutcome(outcome))

	app := &App{
		Env:      env,
		Storage:  store,
		Logger:   logger,
		Catalog:  cat,
		Tracker:  progress.New(store, cat, logger, progress.WithClock(o.now)),
		StoreKit: platform,
		Entitlements: entitlement.New(platform, storekit.NewVerifier(key), store, logger,
			entitlement.WithClock(o.now)),
	}
	logger.Debug("Services ready",
		zap.String("data_dir", env.DataDir),
		zap.String("storage", env.Storage))
	return app, nil
}

// Start loads products, reconciles entitlements and starts the transaction
// listener. Call Close to stop it.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	if err := a.Entitlements.LoadProducts(ctx); err != nil {
		a.Logger.Warn("Products unavailable", zap.Error(err))
	}
	if _, err := a.Entitlements.CheckStatus(ctx); err != nil {
		a.Logger.Warn("Entitlement check failed", zap.Error(err))
	}
	a.done = a.Entitlements.Listen(ctx)
}

// Close stops the listener, then closes storage and flushes the log.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
		<-a.done
	}
	err := a.Storage.Close()
	_ = a.Logger.Sync()
	return err
}
