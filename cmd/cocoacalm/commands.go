package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cocoacalm/internal/bootstrap"
	"cocoacalm/internal/models"
	"cocoacalm/internal/storekit"
	"cocoacalm/internal/ui/stats"
)

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}
}

func printState(w io.Writer, state models.EntitlementState) {
	_, _ = fmt.Fprintf(w, "status: %s\n", state.Status())
	_, _ = fmt.Fprintf(w, "tier: %s\n", state.Tier())
	_, _ = fmt.Fprintf(w, "premium: %t\n", state.CanAccessPremium())
	_, _ = fmt.Fprintln(w, state.StatusText())
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the subscription status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			printState(cmd.OutOrStdout(), app.Entitlements.State())
			return nil
		},
	}
}

func newTrialCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "trial",
		Short: "Start the free trial",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			state, started := app.Entitlements.StartTrial()
			if !started {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "trial not started")
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func newPurchaseCmd(flags *rootFlags) *cobra.Command {
	var outcome string

	cmd := &cobra.Command{
		Use:   "purchase <weekly|monthly|annual|lifetime>",
		Short: "Buy a plan from the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, ok := models.ParsePlan(args[0])
			if !ok {
				return fmt.Errorf("unknown plan %q", args[0])
			}

			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if outcome != "" {
				o, err := storekit.ParseOutcome(outcome)
				if err != nil {
					return err
				}
				app.StoreKit.SetOutcome(o)
			}

			status, err := app.Entitlements.Purchase(cmd.Context(), plan)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "purchase %s: %s\n", plan.DisplayName(), status)
			printState(cmd.OutOrStdout(), app.Entitlements.State())
			return nil
		},
	}
	cmd.Flags().StringVar(&outcome, "outcome", "", "force the store's answer: success|cancel|pending|fail")
	return cmd
}

func newRestoreCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore previous purchases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			state, err := app.Entitlements.Restore(cmd.Context())
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

// newStoreCmd exposes the local store's back office: the ledger, approving
// pending purchases and refunds.
func newStoreCmd(flags *rootFlags) *cobra.Command {
	store := &cobra.Command{Use: "store", Short: "Local store administration"}

	store.AddCommand(&cobra.Command{
		Use:   "transactions",
		Short: "List recorded transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			txs := app.StoreKit.Transactions()
			if len(txs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no transactions")
				return nil
			}
			now := time.Now()
			for _, tx := range txs {
				state := "active"
				if !tx.ActiveAt(now) {
					state = "inactive"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
					tx.TransactionID, tx.ProductID, tx.PurchaseDate.Format(time.RFC3339), state)
			}
			return nil
		},
	})

	store.AddCommand(&cobra.Command{
		Use:   "approve",
		Short: "Approve every pending purchase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := app.StoreKit.ApprovePending(cmd.Context())
			if err != nil {
				return err
			}
			return reconcile(cmd, app, fmt.Sprintf("approved %d pending purchase(s)", n))
		},
	})

	store.AddCommand(&cobra.Command{
		Use:   "revoke <transaction-id>",
		Short: "Refund a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.StoreKit.Revoke(cmd.Context(), args[0]); err != nil {
				return err
			}
			return reconcile(cmd, app, "revoked "+args[0])
		},
	})

	return store
}

// reconcile re-checks entitlements directly so a one-shot command does not
// depend on the listener draining the update first.
func reconcile(cmd *cobra.Command, app *bootstrap.App, msg string) error {
	state, err := app.Entitlements.CheckStatus(cmd.Context())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
	printState(cmd.OutOrStdout(), state)
	return nil
}

func newProgressCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Print meditation progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			p := app.Tracker.Progress()
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "sessions: %d\n", p.TotalSessions)
			_, _ = fmt.Fprintf(w, "completed: %d\n", p.CompletedCount())
			_, _ = fmt.Fprintf(w, "minutes: %.1f\n", p.TotalMinutesMeditated)
			_, _ = fmt.Fprintf(w, "current streak: %d\n", p.CurrentStreak)
			_, _ = fmt.Fprintf(w, "longest streak: %d\n", p.LongestStreak)
			for _, c := range p.FavoriteCategories {
				_, _ = fmt.Fprintf(w, "favourite: %s\n", c.DisplayName())
			}

			config, err := app.Storage.GetConfig()
			if err != nil {
				app.Logger.Warn("Using default preferences", zap.Error(err))
			}
			if config.ReminderDue(time.Now(), app.Tracker.Today().SessionsCount) {
				_, _ = fmt.Fprintln(w, "reminder: time for today's practice")
			} else {
				_, _ = fmt.Fprintf(w, "reminder: daily at %02d:00\n", config.ReminderHour)
			}
			return nil
		},
	}
}

func newCatalogCmd(flags *rootFlags) *cobra.Command {
	var category string
	var today bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the content library",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			items := app.Catalog.All()
			switch {
			case today:
				items = app.Tracker.TodaysContent()
			case category != "":
				c := models.Category(category)
				if !c.Valid() {
					return fmt.Errorf("unknown category %q", category)
				}
				items = app.Catalog.ByCategory(c)
			}

			premium := app.Entitlements.CanAccessPremium()
			for _, item := range items {
				lock := ""
				if item.IsPremium && !premium {
					lock = "\tlocked"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d min%s\n",
					item.ID, item.Category, item.Title, item.Minutes(), lock)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().BoolVar(&today, "today", false, "today's themed picks")
	return cmd
}

func newSessionCmd(flags *rootFlags) *cobra.Command {
	var completed float64

	cmd := &cobra.Command{
		Use:   "session <content-id>",
		Short: "Record a session without running the timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			item, ok := app.Catalog.ByID(args[0])
			if !ok {
				return fmt.Errorf("unknown content %q", args[0])
			}
			if item.IsPremium && !app.Entitlements.CanAccessPremium() {
				return fmt.Errorf("%s requires premium", item.Title)
			}

			seconds := item.Duration
			if cmd.Flags().Changed("completed") {
				seconds = completed
			}
			session := app.Tracker.CompleteSession(app.Tracker.StartSession(item), seconds)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recorded %s: %.0f%% (completed: %t), streak %d\n",
				item.Title, session.CompletionPercentage()*100, session.WasCompleted,
				app.Tracker.Progress().CurrentStreak)
			return nil
		},
	}
	cmd.Flags().Float64Var(&completed, "completed", 0, "seconds completed (default: the full duration)")
	return cmd
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a plain-text progress report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if dir == "" {
				dir = stats.ExportDir(app.Storage.DataDir())
			}
			path, err := app.Storage.WriteReport(dir, time.Now())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default ~/Downloads or the data directory)")
	return cmd
}
