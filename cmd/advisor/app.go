package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-advisor/internal/advisor"
	"github.com/Veraticus/spice-advisor/internal/analytics"
	"github.com/Veraticus/spice-advisor/internal/notify"
	"github.com/Veraticus/spice-advisor/internal/storage"
)

// app bundles the services a command works with.
type app struct {
	store     *storage.SQLiteStore
	advisor   *advisor.Service
	analytics *analytics.Service
	inbox     *notify.InboxNotifier
}

// openApp opens and migrates the database and wires the services on top of it.
func openApp(ctx context.Context) (*app, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	store, err := initStorage(ctx, appConfig.Database.Path)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	inbox := notify.NewInboxNotifier(store)

	adv, err := advisor.NewService(advisor.Deps{
		Store:    store,
		Notifier: notify.Multi{notify.NewLogNotifier(logger), inbox},
		Logger:   logger,
	}, appConfig.AdvisorSettings())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create advisor: %w", err)
	}

	stats, err := analytics.NewService(store, logger, nil)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create analytics: %w", err)
	}

	return &app{store: store, advisor: adv, analytics: stats, inbox: inbox}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

// initStorage opens the database at dbPath and brings its schema up to date.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
