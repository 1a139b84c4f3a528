// Package storage provides the SQLite ledger store.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/zerobudget/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements service.LedgerStore and service.SettingsStore using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	notifier *notifier
	dbPath   string
}

var (
	_ service.LedgerStore   = (*SQLiteStorage)(nil)
	_ service.SettingsStore = (*SQLiteStorage)(nil)
)

// NewSQLiteStorage opens (creating if needed) the database at dbPath.
// Call Migrate before using the store.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes every write, which is the ledger's only concurrency control.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:       db,
		dbPath:   dbPath,
		notifier: newNotifier(),
	}, nil
}

// Close closes the database connection and ends every subscription.
func (s *SQLiteStorage) Close() error {
	s.notifier.close()
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// NewCheckpointManager creates a new checkpoint manager for this storage instance.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	return NewCheckpointManager(s.db, s.dbPath)
}

// Subscribe registers for change events published after every committed write.
func (s *SQLiteStorage) Subscribe() (<-chan service.ChangeEvent, func()) {
	return s.notifier.subscribe()
}

// write runs fn in its own database transaction and publishes a change
// event for tables once it commits.
func (s *SQLiteStorage) write(ctx context.Context, fn func(tx *sql.Tx) error, tables ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifier.publish(tables...)
	return nil
}

// RunInTx runs fn against a ledger bound to a single database transaction.
func (s *SQLiteStorage) RunInTx(ctx context.Context, fn func(tx service.Ledger) error) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ledger := &sqliteTransaction{tx: tx, storage: s, touched: make(map[string]bool)}
	if err := fn(ledger); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	tables := ledger.touchedTables()
	if len(tables) > 0 {
		s.notifier.publish(tables...)
	}
	slog.Debug("Committed ledger transaction", "tables", tables)
	return nil
}

// queryable is an interface satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
