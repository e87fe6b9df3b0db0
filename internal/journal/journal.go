// Package journal keeps a local record of agentrc sessions and of every
// decision the dispatcher made during them (command rewrites, memory
// operations, denials, restricted-path warnings, initializations).
//
// It uses SQLite through the pure-Go modernc driver so the binary stays
// cgo-free.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ─── Types ───────────────────────────────────────────────────────────────────

// Kind classifies a journal entry.
type Kind string

const (
	KindRewrite    Kind = "rewrite"
	KindMemory     Kind = "memory"
	KindDenied     Kind = "denied"
	KindRestricted Kind = "restricted"
	KindInit       Kind = "init"
	KindReload     Kind = "reload"
)

// Session is one host session.
type Session struct {
	ID        string  `json:"id"`
	Project   string  `json:"project"`
	Directory string  `json:"directory"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at,omitempty"`
}

// Entry is one recorded dispatcher decision.
type Entry struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Kind      Kind   `json:"kind"`
	Tool      string `json:"tool"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"created_at"`
}

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("journal: closed")

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds journal configuration.
type Config struct {
	DataDir    string
	MaxEntries int // entries kept per session; 0 means unlimited
}

// DefaultConfig stores the journal under the user config directory.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:    filepath.Join(home, ".config", "agentrc"),
		MaxEntries: 1000,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Journal is the SQLite-backed session journal.
type Journal struct {
	db  *sql.DB
	cfg Config
}

// New opens (creating if needed) the journal database in cfg.DataDir.
func New(cfg Config) (*Journal, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("journal: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, "journal.db"))
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: pragma %q: %w", p, err)
		}
	}

	j := &Journal{db: db, cfg: cfg}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: migration: %w", err)
	}
	return j, nil
}

// Close closes the database. It is safe to call on a nil journal.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

func (j *Journal) migrate() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			project    TEXT NOT NULL,
			directory  TEXT NOT NULL,
			started_at TEXT NOT NULL DEFAULT (datetime('now')),
			ended_at   TEXT
		);

		CREATE TABLE IF NOT EXISTS entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			kind       TEXT NOT NULL,
			tool       TEXT NOT NULL DEFAULT '',
			detail     TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);

		CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session_id, id);
	`)
	return err
}

func (j *Journal) conn() (*sql.DB, error) {
	if j == nil || j.db == nil {
		return nil, ErrClosed
	}
	return j.db, nil
}

// ─── Sessions ────────────────────────────────────────────────────────────────

// StartSession registers a session. Starting an existing id is a no-op.
func (j *Journal) StartSession(id, project, directory string) error {
	db, err := j.conn()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT OR IGNORE INTO sessions (id, project, directory, started_at) VALUES (?, ?, ?, ?)`,
		id, project, directory, Now(),
	)
	return err
}

// EndSession stamps the session's end time.
func (j *Journal) EndSession(id string) error {
	db, err := j.conn()
	if err != nil {
		return err
	}
	_, err = db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, Now(), id)
	return err
}

// GetSession retrieves a session by id.
func (j *Journal) GetSession(id string) (*Session, error) {
	db, err := j.conn()
	if err != nil {
		return nil, err
	}
	var s Session
	err = db.QueryRow(
		`SELECT id, project, directory, started_at, ended_at FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.Project, &s.Directory, &s.StartedAt, &s.EndedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ─── Entries ─────────────────────────────────────────────────────────────────

// Record appends an entry. A session row is created on demand so that
// hook invocations arriving without a prior session.start are still kept.
func (j *Journal) Record(sessionID string, kind Kind, tool, detail string) (int64, error) {
	db, err := j.conn()
	if err != nil {
		return 0, err
	}
	if _, err := db.Exec(
		`INSERT OR IGNORE INTO sessions (id, project, directory, started_at) VALUES (?, '', '', ?)`,
		sessionID, Now(),
	); err != nil {
		return 0, fmt.Errorf("journal: ensure session: %w", err)
	}

	res, err := db.Exec(
		`INSERT INTO entries (session_id, kind, tool, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, string(kind), tool, detail, Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("journal: record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if j.cfg.MaxEntries > 0 {
		if _, err := db.Exec(
			`DELETE FROM entries WHERE session_id = ? AND id NOT IN (
				SELECT id FROM entries WHERE session_id = ? ORDER BY id DESC LIMIT ?
			)`,
			sessionID, sessionID, j.cfg.MaxEntries,
		); err != nil {
			return id, fmt.Errorf("journal: prune: %w", err)
		}
	}
	return id, nil
}

// Recent returns the newest entries across all sessions, newest first.
// A sessionID filters to one session when non-empty.
func (j *Journal) Recent(sessionID string, limit int) ([]Entry, error) {
	db, err := j.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, session_id, kind, tool, detail, created_at FROM entries`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &e.Tool, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Now returns the current time formatted for SQLite.
func Now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
