package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cocoacalm/internal/bootstrap"
	"cocoacalm/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// rootFlags override the COCOACALM_* environment when set.
type rootFlags struct {
	dataDir  string
	storage  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "cocoacalm",
		Short:         "Cocoa Calm: guided meditation and breathing in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), &flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default ~/.cocoacalm)")
	root.PersistentFlags().StringVar(&flags.storage, "storage", "", "storage backend: file|sqlite")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(newTUICmd(&flags))
	root.AddCommand(newStatusCmd(&flags))
	root.AddCommand(newTrialCmd(&flags))
	root.AddCommand(newPurchaseCmd(&flags))
	root.AddCommand(newRestoreCmd(&flags))
	root.AddCommand(newStoreCmd(&flags))
	root.AddCommand(newProgressCmd(&flags))
	root.AddCommand(newCatalogCmd(&flags))
	root.AddCommand(newSessionCmd(&flags))
	root.AddCommand(newExportCmd(&flags))
	return root
}

func loadEnv(flags *rootFlags) (config.Env, error) {
	env, err := config.Load()
	if err != nil {
		return config.Env{}, err
	}
	if flags.dataDir != "" {
		env.DataDir = flags.dataDir
	}
	if flags.storage != "" {
		env.Storage = flags.storage
	}
	if flags.logLevel != "" {
		env.LogLevel = flags.logLevel
	}
	return env, nil
}

// loadApp builds and starts the services. Callers must Close the app.
func loadApp(ctx context.Context, flags *rootFlags) (*bootstrap.App, error) {
	env, err := loadEnv(flags)
	if err != nil {
		return nil, err
	}
	app, err := bootstrap.New(env)
	if err != nil {
		return nil, err
	}
	app.Start(ctx)
	return app, nil
}
