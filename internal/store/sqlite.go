package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (blobs only)
// 1 - Added blob_history for per-write revisions
const currentSchemaVersion = 1

// SQLite is an Adapter backed by a single SQLite table.
// Uses WAL mode for concurrent read access.
type SQLite struct {
	db *sql.DB
}

// Revision describes one stored generation of a blob.
type Revision struct {
	Version Version `json:"version"`
	Size    int     `json:"size"`
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get implements Adapter.
func (s *SQLite) Get(ctx context.Context, path string) (Blob, error) {
	var content []byte
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT content, version FROM blobs WHERE path = ?`, path,
	).Scan(&content, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, fmt.Errorf("get %s: %w", path, err)
	}
	return Blob{Content: content, Version: genVersion(version)}, nil
}

// Stat implements Statter.
func (s *SQLite) Stat(ctx context.Context, path string) (Version, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM blobs WHERE path = ?`, path,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return genVersion(version), nil
}

// Put implements Adapter.
//
// The compare-and-swap is a single conditional statement: an INSERT that
// does nothing if the row exists, or an UPDATE guarded by the expected
// version. Zero affected rows means another writer got there first.
func (s *SQLite) Put(ctx context.Context, path string, content []byte, expected Version) (Version, error) {
	if content == nil {
		content = []byte{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("put %s: begin tx: %w", path, err)
	}
	defer tx.Rollback() // No-op if committed

	var next int64
	var result sql.Result
	if expected == "" {
		next = 1
		result, err = tx.ExecContext(ctx, `
			INSERT INTO blobs (path, content, version)
			VALUES (?, ?, 1)
			ON CONFLICT(path) DO NOTHING
		`, path, content)
	} else {
		prev, perr := strconv.ParseInt(string(expected), 10, 64)
		if perr != nil {
			return "", s.conflict(ctx, tx, path, expected)
		}
		next = prev + 1
		result, err = tx.ExecContext(ctx, `
			UPDATE blobs SET content = ?, version = ?
			WHERE path = ? AND version = ?
		`, content, next, path, prev)
	}
	if err != nil {
		return "", fmt.Errorf("put %s: %w", path, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("put %s: rows affected: %w", path, err)
	}
	if rows == 0 {
		return "", s.conflict(ctx, tx, path, expected)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO blob_history (path, version, size)
		VALUES (?, ?, ?)
	`, path, next, len(content)); err != nil {
		return "", fmt.Errorf("put %s: history: %w", path, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("put %s: commit: %w", path, err)
	}
	return genVersion(next), nil
}

// conflict builds a ConflictError carrying the version currently stored.
func (s *SQLite) conflict(ctx context.Context, tx *sql.Tx, path string, expected Version) error {
	var actual Version
	var version int64
	err := tx.QueryRowContext(ctx, `SELECT version FROM blobs WHERE path = ?`, path).Scan(&version)
	if err == nil {
		actual = genVersion(version)
	}
	return &ConflictError{Path: path, Expected: expected, Actual: actual}
}

// History returns every recorded revision of path, oldest first.
func (s *SQLite) History(ctx context.Context, path string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version, size FROM blob_history
		WHERE path = ?
		ORDER BY version ASC
	`, path)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", path, err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var version int64
		var size int
		if err := rows.Scan(&version, &size); err != nil {
			return nil, fmt.Errorf("history %s: scan: %w", path, err)
		}
		revs = append(revs, Revision{Version: genVersion(version), Size: size})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history %s: %w", path, err)
	}
	return revs, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the blob_history table. Existing blobs get one history
// row for their current version.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS blob_history (
			path    TEXT    NOT NULL COLLATE BINARY,
			version INTEGER NOT NULL,
			size    INTEGER NOT NULL,
			PRIMARY KEY (path, version)
		);
		INSERT OR IGNORE INTO blob_history (path, version, size)
		SELECT path, version, length(content) FROM blobs;
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *SQLite) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
