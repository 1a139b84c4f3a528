package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/zerobudget/internal/cli"
	"github.com/Veraticus/zerobudget/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every command migrates the database on open; this command does it explicitly
and reports the schema version.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	store, err := storage.NewSQLiteStorage(appConfig.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	latest := storage.LatestSchemaVersion()

	if status {
		var b strings.Builder
		fmt.Fprintf(&b, "Database:        %s\n", appConfig.DatabasePath)
		fmt.Fprintf(&b, "Current version: %d\n", current)
		fmt.Fprintf(&b, "Latest version:  %d", latest)
		if current < latest {
			fmt.Fprintf(&b, "\n%d migration(s) pending", latest-current)
		}
		fmt.Fprintln(out, cli.RenderBox(cli.FolderIcon+" Schema", b.String()))
		return nil
	}

	slog.Info("Running database migrations", "database", appConfig.DatabasePath, "from", current, "to", latest)

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(out, "Database is at schema version %d\n", latest)
	return nil
}
