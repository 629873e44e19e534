// Package sqlite persists cache snapshots in a single SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/recall-ai/recall/pkg/models"
	"github.com/recall-ai/recall/pkg/snapshot"
)

// Store implements snapshot.Store on a SQLite file. The whole snapshot is
// replaced on every save, mirroring the JSON document semantics.
type Store struct {
	db   *sql.DB
	path string
}

const createTables = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
	key TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	context TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	access_count INTEGER NOT NULL,
	last_accessed DATETIME NOT NULL
);
`

const versionRow = "format_version"

// New opens the database at dbPath. Schema creation is deferred to Load
// and Save so a missing directory degrades like an unreadable snapshot
// instead of failing construction.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Load returns all persisted entries. A fresh database yields an empty
// map; a version mismatch yields snapshot.ErrVersionMismatch.
func (s *Store) Load() (map[string]models.Entry, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}

	var version int
	err := s.db.QueryRow(
		`SELECT value FROM snapshot_meta WHERE key = ?`, versionRow,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		var count int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		if count > 0 {
			return nil, snapshot.ErrVersionMismatch
		}
		return map[string]models.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot version: %w", err)
	}
	if version != snapshot.FormatVersion {
		return nil, snapshot.ErrVersionMismatch
	}

	rows, err := s.db.Query(
		`SELECT key, question, answer, context, created_at, access_count, last_accessed
		 FROM cache_entries`,
	)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer rows.Close()

	entries := map[string]models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(
			&e.Key, &e.Question, &e.Answer, &e.Context,
			&e.CreatedAt, &e.AccessCount, &e.LastAccessed,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot entry: %w", err)
		}
		entries[e.Key] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return entries, nil
}

// Save replaces the snapshot in one transaction and stamps the current
// format version.
func (s *Store) Save(entries map[string]models.Entry) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO cache_entries (key, question, answer, context, created_at, access_count, last_accessed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(
			e.Key, e.Question, e.Answer, e.Context,
			e.CreatedAt.UTC(), e.AccessCount, e.LastAccessed.UTC(),
		); err != nil {
			return fmt.Errorf("write snapshot entry: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO snapshot_meta (key, value) VALUES (?, ?)`,
		versionRow, snapshot.FormatVersion,
	); err != nil {
		return fmt.Errorf("stamp snapshot version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot save: %w", err)
	}
	return nil
}

// Name identifies the driver in stats output.
func (s *Store) Name() string { return "sqlite" }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prepare snapshot dir: %w", err)
		}
	}
	if _, err := s.db.Exec(createTables); err != nil {
		return fmt.Errorf("migrate snapshot db: %w", err)
	}
	return nil
}
