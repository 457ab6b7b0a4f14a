package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/stats"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS sessions (
    id              TEXT PRIMARY KEY,
    base_name       TEXT NOT NULL DEFAULT '',
    created_at      INTEGER NOT NULL,
    files_processed INTEGER NOT NULL DEFAULT 0,
    errors          TEXT NOT NULL DEFAULT '[]',
    records         TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS sessions_created_at ON sessions (created_at);

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion should be bumped whenever the stored record layout changes.
// Sessions written under another version are dropped on open.
const schemaVersion = "1"

// SQLiteStore keeps sessions in a SQLite file so they survive a restart
// within their TTL.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// storedRecord keeps the source position that the public JSON form omits.
type storedRecord struct {
	parse.Record
	Source string `json:"source,omitempty"`
	Line   int    `json:"line,omitempty"`
}

func OpenSQLite(dbPath string, ttl time.Duration, opts ...Option) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// pragmas are per connection and TakeOnce relies on serialized writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	o := buildOptions(opts)
	s := &SQLiteStore{db: db, ttl: normalizeTTL(ttl), now: o.now}
	if err := s.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrateSchemaVersion() error {
	var ver string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM sessions"); err != nil {
		return err
	}
	_, err = s.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Put(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	stored := make([]storedRecord, len(sess.Records))
	for i, r := range sess.Records {
		stored[i] = storedRecord{Record: r, Source: r.SourceFile, Line: r.LineNumber}
	}
	records, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	fileErrors := sess.Errors
	if fileErrors == nil {
		fileErrors = []parse.FileError{}
	}
	errs, err := json.Marshal(fileErrors)
	if err != nil {
		return fmt.Errorf("encode errors: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (id, base_name, created_at, files_processed, errors, records)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.BaseName, sess.CreatedAt.UnixNano(), sess.FilesProcessed, string(errs), string(records),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		sess          Session
		created       int64
		errs, records string
	)
	err := row.Scan(&sess.ID, &sess.BaseName, &created, &sess.FilesProcessed, &errs, &records)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.CreatedAt = time.Unix(0, created)

	if err := json.Unmarshal([]byte(errs), &sess.Errors); err != nil {
		return nil, fmt.Errorf("decode errors: %w", err)
	}
	var stored []storedRecord
	if err := json.Unmarshal([]byte(records), &stored); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	sess.Records = make([]parse.Record, len(stored))
	for i, sr := range stored {
		r := sr.Record
		r.SourceFile = sr.Source
		r.LineNumber = sr.Line
		sess.Records[i] = r
	}
	sess.Stats = stats.Compute(sess.Records)
	return &sess, nil
}

const selectSession = "SELECT id, base_name, created_at, files_processed, errors, records FROM sessions WHERE id = ?"

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx, selectSession, id))
	if err != nil {
		return nil, err
	}
	if expired(sess.CreatedAt, s.now(), s.ttl) {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *SQLiteStore) TakeOnce(ctx context.Context, id string) (*Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sess, err := scanSession(tx.QueryRowContext(ctx, selectSession, id))
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n != 1 {
		return nil, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	if expired(sess.CreatedAt, s.now(), s.ttl) {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *SQLiteStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.ttl).UnixNano()
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}
