// Package store provides the SQLite persistence gateway for extracted
// repository histories.
package store

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the sqlite3 driver with database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/gitledger/gitledger/internal/domain"
)

// Schema statements. The three relations form the storage contract:
// repositories are registered insert-or-ignore by name, logs are keyed by
// the bare commit hash, and changed files reference their logs row.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS repositories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		url TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS logs (
		commit_hash TEXT PRIMARY KEY,
		author_name TEXT NOT NULL,
		author_email TEXT NOT NULL,
		message TEXT,
		commit_datetime DATETIME NOT NULL,
		insertions INTEGER,
		deletions INTEGER,
		repository_id INTEGER,
		parent_hash TEXT,
		FOREIGN KEY (repository_id) REFERENCES repositories (id)
	)`,
	`CREATE TABLE IF NOT EXISTS changed_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		commit_hash TEXT NOT NULL,
		file_path TEXT,
		FOREIGN KEY (commit_hash) REFERENCES logs (commit_hash)
	)`,
}

// SQLiteStore implements domain.HistoryStore on a SQLite database file.
// The embedded sql.DB is the bounded connection pool shared by all
// ingestion tasks; each per-repository transaction borrows one connection
// for its duration and returns it afterward.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at path. The
// pool is bounded to maxConns concurrently checked-out connections.
func NewSQLiteStore(path string, maxConns int) (*SQLiteStore, error) {
	if maxConns < 1 {
		maxConns = 1
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", domain.ErrPersistenceFailed, err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%w: ping database: %v", domain.ErrPersistenceFailed, err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the connection pool.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureSchema idempotently creates the three relations. When clear is set,
// all existing rows are deleted (children first, for foreign-key order)
// before it returns; callers must not start any analysis task until this
// completes.
func (s *SQLiteStore) EnsureSchema(ctx context.Context, clear bool) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure schema: %v", domain.ErrPersistenceFailed, err)
		}
	}

	if clear {
		for _, table := range []string{"changed_files", "logs", "repositories"} {
			if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("%w: clear %s: %v", domain.ErrPersistenceFailed, table, err)
			}
		}
	}

	return nil
}

// StoreHistory writes one repository's history. The repository row is
// registered insert-or-ignore by name (first writer wins; concurrent
// duplicate-name writers are ignored, not errors), then all logs and
// changed-file rows are written in a single transaction: either the whole
// commit set becomes durable or none of it does.
//
// Logs already present from a previous run are left untouched, and their
// changed files are not re-inserted, so reruns never duplicate rows.
func (s *SQLiteStore) StoreHistory(ctx context.Context, history *domain.RepositoryHistory) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO repositories (name, url) VALUES (?, ?)`,
		history.Identity.Name, urlValue(history.RemoteURL),
	); err != nil {
		return fmt.Errorf("%w: register repository %s: %v", domain.ErrPersistenceFailed, history.Identity.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrPersistenceFailed, err)
	}
	// Rollback is a no-op once the transaction has been committed.
	defer func() { _ = tx.Rollback() }()

	var repositoryID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM repositories WHERE name = ?`, history.Identity.Name,
	).Scan(&repositoryID); err != nil {
		return fmt.Errorf("%w: resolve repository id for %s: %v", domain.ErrPersistenceFailed, history.Identity.Name, err)
	}

	logStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO logs
		(commit_hash, author_name, author_email, message, commit_datetime, insertions, deletions, repository_id, parent_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare logs insert: %v", domain.ErrPersistenceFailed, err)
	}
	defer logStmt.Close()

	fileStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO changed_files (commit_hash, file_path) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare changed_files insert: %v", domain.ErrPersistenceFailed, err)
	}
	defer fileStmt.Close()

	for _, commit := range history.Commits {
		res, err := logStmt.ExecContext(ctx,
			commit.Hash, commit.AuthorName, commit.AuthorEmail, commit.Summary,
			commit.CommitTime, commit.Insertions, commit.Deletions,
			repositoryID, parentValue(commit),
		)
		if err != nil {
			return fmt.Errorf("%w: insert log %s: %v", domain.ErrPersistenceFailed, commit.Hash, err)
		}

		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: insert log %s: %v", domain.ErrPersistenceFailed, commit.Hash, err)
		}
		if inserted == 0 {
			// Already stored by a previous run; the commit hash is the
			// primary key, so its changed files are already present too.
			continue
		}

		for _, path := range commit.ChangedFiles {
			if _, err := fileStmt.ExecContext(ctx, commit.Hash, path); err != nil {
				return fmt.Errorf("%w: insert changed file %s of %s: %v",
					domain.ErrPersistenceFailed, path, commit.Hash, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %v", domain.ErrPersistenceFailed, history.Identity.Name, err)
	}
	return nil
}

// urlValue maps the in-memory no-remote sentinel to a NULL url column.
func urlValue(remoteURL string) any {
	if remoteURL == "" || remoteURL == domain.NoRemoteURL {
		return nil
	}
	return remoteURL
}

// parentValue maps a root commit's empty parent to a NULL parent_hash column.
func parentValue(commit domain.CommitRecord) any {
	if commit.IsRoot() {
		return nil
	}
	return commit.ParentHash
}
