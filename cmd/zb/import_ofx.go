package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/zerobudget/internal/cli"
	"github.com/Veraticus/zerobudget/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	var (
		dryRun       bool
		noCheckpoint bool
		batchSize    int
	)

	cmd := &cobra.Command{
		Use:   "import-ofx <files>...",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank.

Imported transactions land in "To be budgeted"; assign them to categories with
'zb tx edit'. Lines repeating a FITID already read in the same run are skipped.
An automatic checkpoint is taken before anything is written.`,
		Example: `  # Import one file
  zb import-ofx ~/Downloads/checking_2024-03.qfx

  # Import every OFX/QFX file below a directory
  zb import-ofx ~/Downloads/bank`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), true)
			defer handler.Stop()

			parser := ofx.NewParser()
			var statements []*ofx.Statement
			for _, path := range files {
				stmt, err := parseOFXFile(cmd, parser, path)
				if err != nil {
					slog.Error("Failed to parse OFX file", "file", path, "error", err)
					continue
				}
				statements = append(statements, stmt)
			}
			if len(statements) == 0 {
				return errors.New("no file could be parsed")
			}

			stmt := ofx.Merge(statements...)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d transactions from %d accounts (%d duplicates, %d rejected)\n",
				cli.InfoIcon, len(stmt.Entries), len(stmt.Accounts), stmt.Duplicates, stmt.Rejected)

			if dryRun || len(stmt.Entries) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("Nothing written."))
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if !noCheckpoint {
				checkpoints, err := store.NewCheckpointManager()
				if err != nil {
					return fmt.Errorf("failed to create checkpoint manager: %w", err)
				}
				info, err := checkpoints.AutoCheckpoint(ctx, "import")
				if err != nil {
					return err
				}
				slog.Info("Created checkpoint", "id", info.ID)
			}

			bar := cli.NewProgressBar(out, len(stmt.Entries), "Importing transactions...")
			result, err := ofx.NewImporter(store).
				WithBatchSize(batchSize).
				WithProgress(cli.ProgressTo(bar)).
				Import(ctx, stmt)
			if err != nil {
				if handler.WasInterrupted() {
					return nil
				}
				return fmt.Errorf("import stopped after %d transactions: %w", result.Imported, err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions, %d new payees",
				result.Imported, result.NewPayees)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "parse and summarize without writing")
	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "skip the automatic checkpoint")
	cmd.Flags().IntVar(&batchSize, "batch-size", ofx.DefaultBatchSize, "transactions per atomic write")

	return cmd
}

// expandFiles resolves glob patterns and walks directories for .ofx and .qfx
// files. A pattern matching nothing must name a file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			found, err := ofxFilesIn(pattern)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		slog.Warn("No files found matching pattern", "pattern", pattern)
	}
	if len(files) == 0 {
		return nil, errors.New("no files found to import")
	}
	return files, nil
}

func ofxFilesIn(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ofx", ".qfx":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	return files, nil
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) (*ofx.Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stmt, err := parser.ParseFile(cmd.Context(), f)
	if err != nil {
		return nil, err
	}
	slog.Info("Processed file", "file", filepath.Base(path), "transactions", len(stmt.Entries))
	return stmt, nil
}
