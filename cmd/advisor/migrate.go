package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-advisor/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on startup; this one is useful to check
the schema after an upgrade.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	store, err := storage.NewSQLiteStore(appConfig.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		return printMigrationStatus(ctx, out, store)
	}

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	slog.Info("Running database migrations", "database", store.Path(), "from", current)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, "✅ Database migrations completed successfully!")
	return nil
}

// printMigrationStatus reports the schema version, pending migrations and,
// once the schema is current, the stored keys.
func printMigrationStatus(ctx context.Context, out io.Writer, store *storage.SQLiteStore) error {
	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	pending, err := store.PendingMigrations(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Database:        %s\n", store.Path())
	fmt.Fprintf(out, "Current version: %d\n", current)
	fmt.Fprintf(out, "Latest version:  %d\n", storage.ExpectedSchemaVersion)

	if len(pending) > 0 {
		for _, m := range pending {
			fmt.Fprintf(out, "  pending %d: %s\n", m.Version, m.Description)
		}
		fmt.Fprintln(out, "Run 'advisor migrate' to apply them.")
		return nil
	}

	keys, err := store.Keys(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Stored keys:     %d\n", len(keys))
	for _, key := range keys {
		fmt.Fprintf(out, "  %s\n", key)
	}
	return nil
}
