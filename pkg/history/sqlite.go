package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// openDB opens the database handle; tests swap it to simulate driver failures.
var openDB = sql.Open

// SQLiteStore keeps history in a SQLite database, one row per entry.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (and creates if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", dir, err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", constants.SQLiteBusyTimeout.Milliseconds()),
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			family     TEXT NOT NULL,
			applied_at TEXT NOT NULL,
			entry      TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_entries_family ON entries(family, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts e.
func (s *SQLiteStore) Append(e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.WrapParse("json", s.path, err)
	}
	_, err = s.db.Exec(
		"INSERT INTO entries (family, applied_at, entry) VALUES (?, ?, ?)",
		e.Family, e.Timestamp.Format(time.RFC3339Nano), string(data),
	)
	if err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

func (s *SQLiteStore) last(family string) (int64, *Entry, error) {
	var (
		id  int64
		raw string
	)
	err := s.db.QueryRow(
		"SELECT id, entry FROM entries WHERE family = ? ORDER BY id DESC LIMIT 1", family,
	).Scan(&id, &raw)
	if err == sql.ErrNoRows {
		return 0, nil, noHistory(family)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("history: last: %w", err)
	}
	e, err := decode(raw)
	return id, e, err
}

// Last returns the most recent entry for family.
func (s *SQLiteStore) Last(family string) (*Entry, error) {
	_, e, err := s.last(family)
	return e, err
}

// Pop deletes and returns the most recent entry for family.
func (s *SQLiteStore) Pop(family string) (*Entry, error) {
	id, e, err := s.last(family)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec("DELETE FROM entries WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("history: pop: %w", err)
	}
	return e, nil
}

// List returns the entries of family, oldest first.
func (s *SQLiteStore) List(family string) ([]*Entry, error) {
	rows, err := s.db.Query("SELECT entry FROM entries WHERE family = ? ORDER BY id", family)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []*Entry{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("history: list: %w", err)
		}
		e, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Families returns the families with at least one entry.
func (s *SQLiteStore) Families() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT family FROM entries ORDER BY family")
	if err != nil {
		return nil, fmt.Errorf("history: families: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("history: families: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Total counts every entry.
func (s *SQLiteStore) Total() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("history: total: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decode(raw string) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, errors.WrapParse("json", "history entry", err)
	}
	return &e, nil
}
