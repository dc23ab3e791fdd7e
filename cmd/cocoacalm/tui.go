package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"cocoacalm/internal/bootstrap"
	"cocoacalm/internal/breathing"
	"cocoacalm/internal/models"
	"cocoacalm/internal/ui/help"
	"cocoacalm/internal/ui/library"
	"cocoacalm/internal/ui/menu"
	"cocoacalm/internal/ui/premium"
	"cocoacalm/internal/ui/settings"
	"cocoacalm/internal/ui/stats"
	"cocoacalm/internal/ui/timer"
)

// run drives one screen to completion and hands back its final state.
func run[M tea.Model](m M) (M, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return m, err
	}
	return final.(M), nil
}

func runTUI(ctx context.Context, flags *rootFlags) error {
	app, err := loadApp(ctx, flags)
	if err != nil {
		return err
	}
	defer func() {
		if app != nil {
			_ = app.Close()
		}
	}()

	if app.Storage.IsFirstTime() {
		fmt.Println("*** Welcome to Cocoa Calm! ***")
		fmt.Println("Let's set up your preferences...")

		settingsModel, err := settings.New(app.Storage)
		if err != nil {
			return err
		}
		if _, err := run(settingsModel); err != nil {
			return err
		}
		fmt.Println("[OK] Setup complete! Take a deep breath.")
	}

	for {
		config, err := app.Storage.GetConfig()
		if err != nil {
			app.Logger.Warn("Using default preferences", zap.Error(err))
		}

		menuModel, err := run(menu.New(app.Tracker, app.Entitlements, config))
		if err != nil {
			return err
		}
		if menuModel.ShouldQuit() {
			fmt.Println(">>> Until next time. Breathe easy.")
			return nil
		}

		switch menuModel.GetSelected() {
		case menu.StartSession:
			err = runLibrary(ctx, app, config)
		case menu.QuickBreathing:
			pattern, _ := breathing.ByName(config.BreathingPattern)
			_, err = run(timer.New(timer.QuickBreathing(config.SessionDuration), pattern, app.Tracker))
		case menu.ViewProgress:
			_, err = run(stats.New(app.Tracker, app.Catalog, app.Storage))
		case menu.Premium:
			_, err = run(premium.New(ctx, app.Entitlements))
		case menu.Settings:
			app, err = runSettings(ctx, flags, app)
		case menu.Help:
			_, err = run(help.New(app.Storage.DataDir()))
		}
		if err != nil {
			return err
		}
	}
}

func runLibrary(ctx context.Context, app *bootstrap.App, config models.Config) error {
	libraryModel, err := run(library.New(app.Catalog, app.Entitlements.CanAccessPremium()))
	if err != nil {
		return err
	}

	if libraryModel.WantsPremium() {
		if _, err := run(premium.New(ctx, app.Entitlements)); err != nil {
			return err
		}
		return nil
	}

	item := libraryModel.Selected()
	if item == nil {
		return nil
	}
	pattern, _ := breathing.ByName(config.BreathingPattern)
	timerModel, err := run(timer.New(*item, pattern, app.Tracker))
	if err != nil {
		return err
	}
	if s := timerModel.Recorded(); s != nil {
		app.Logger.Debug("Timer finished",
			zap.String("content_id", s.ContentID),
			zap.Bool("was_completed", s.WasCompleted))
	}
	return nil
}

// runSettings reopens the services after a reset so nothing serves state
// loaded before the wipe.
func runSettings(ctx context.Context, flags *rootFlags, app *bootstrap.App) (*bootstrap.App, error) {
	settingsModel, err := settings.New(app.Storage)
	if err != nil {
		return app, err
	}
	settingsModel, err = run(settingsModel)
	if err != nil {
		return app, err
	}
	if !settingsModel.WasReset() {
		return app, nil
	}

	if err := app.Close(); err != nil {
		return nil, err
	}
	return loadApp(ctx, flags)
}
