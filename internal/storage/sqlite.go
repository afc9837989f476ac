package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Ensure SQLiteStore implements the Store interface.
var _ service.Store = (*SQLiteStore)(nil)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite storage instance.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and :memory: needs exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// NewSQLiteStoreFromDB wraps an already opened database handle.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

const upsertValueQuery = `
	INSERT INTO kv_store (key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

const upsertBackupQuery = `
	INSERT INTO kv_backups (key, value, backed_up_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, backed_up_at = excluded.backed_up_at
`

// Save encodes value as JSON and writes it under key.
func (s *SQLiteStore) Save(ctx context.Context, key string, value any, opts ...service.SaveOption) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return common.NewStorageError("encode", key, err)
	}

	options := service.ApplySaveOptions(opts...)
	if !options.Backup {
		if _, err := s.db.ExecContext(ctx, upsertValueQuery, key, string(encoded)); err != nil {
			return common.NewStorageError("save", key, err)
		}
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewStorageError("save", key, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, upsertValueQuery, key, string(encoded)); err != nil {
		return common.NewStorageError("save", key, err)
	}
	if _, err := tx.ExecContext(ctx, upsertBackupQuery, key, string(encoded)); err != nil {
		return common.NewStorageError("backup", key, err)
	}
	if err := tx.Commit(); err != nil {
		return common.NewStorageError("save", key, fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}

// Load decodes the value stored under key into dest.
func (s *SQLiteStore) Load(ctx context.Context, key string, dest any) (bool, error) {
	return s.load(ctx, "load", `SELECT value FROM kv_store WHERE key = ?`, key, dest)
}

// LoadBackup decodes the backup copy stored under key into dest.
func (s *SQLiteStore) LoadBackup(ctx context.Context, key string, dest any) (bool, error) {
	return s.load(ctx, "load backup", `SELECT value FROM kv_backups WHERE key = ?`, key, dest)
}

func (s *SQLiteStore) load(ctx context.Context, op, query, key string, dest any) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(key, "key"); err != nil {
		return false, err
	}
	if err := validateDest(dest); err != nil {
		return false, err
	}

	var raw string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, common.NewStorageError(op, key, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, common.NewStorageError("decode", key, err)
	}
	return true, nil
}

// Delete removes key and its backup copy.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return common.NewStorageError("delete", key, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_backups WHERE key = ?`, key); err != nil {
		return common.NewStorageError("delete backup", key, err)
	}
	return nil
}

// Keys lists stored keys in lexical order.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv_store ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
