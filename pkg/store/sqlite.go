package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite "modernc.org/sqlite"

	"github.com/hydrohub/ledger/pkg/ledger"
)

// SQLiteStore persists the chain in a local SQLite database. The sequence is
// the primary key, so a lost-update race between two appends surfaces as a
// constraint violation rather than a silent overwrite.
//
// Timestamps are stored as RFC 3339 text with nanoseconds: the exact string
// that went into the entry hash must come back out, or re-hashing during
// verification would diverge from the committed digest.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	sequence   INTEGER PRIMARY KEY,
	entry_id   TEXT NOT NULL UNIQUE,
	timestamp  TEXT NOT NULL,
	event_kind TEXT NOT NULL,
	payload    TEXT NOT NULL,
	prev_hash  TEXT NOT NULL,
	entry_hash TEXT NOT NULL UNIQUE
);`

// OpenSQLite opens (creating if needed) a SQLite-backed store at path.
// Durability settings favor safety over speed: the write must be on disk
// before Append returns.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// A single writer owns the tail anyway; one connection avoids
	// SQLITE_BUSY juggling.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=FULL;`,
		`PRAGMA foreign_keys=ON;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.ExecContext(context.Background(), sqliteSchema)
	if err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, e ledger.Entry) error {
	const query = `INSERT INTO ledger_entries
		(sequence, entry_id, timestamp, event_kind, payload, prev_hash, entry_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		e.Sequence, e.EntryID, e.Timestamp.UTC().Format(time.RFC3339Nano),
		string(e.Kind), string(e.Payload), e.PrevHash, e.EntryHash,
	)
	if err != nil {
		if isSQLiteConstraint(err) {
			return ledger.ErrSequenceConflict
		}
		return fmt.Errorf("sqlite append: %w", err)
	}
	return nil
}

// SQLITE_CONSTRAINT_PRIMARYKEY and SQLITE_CONSTRAINT_UNIQUE.
func isSQLiteConstraint(err error) bool {
	var sErr *sqlite.Error
	if !errors.As(err, &sErr) {
		return false
	}
	return sErr.Code() == 1555 || sErr.Code() == 2067
}

const entryColumns = `sequence, entry_id, timestamp, event_kind, payload, prev_hash, entry_hash`

func (s *SQLiteStore) Tail(ctx context.Context) (*ledger.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries ORDER BY sequence DESC LIMIT 1`
	e, err := scanEntry(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite tail: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) ReadRange(ctx context.Context, from, to uint64) ([]ledger.Entry, error) {
	if from > to {
		return nil, &ledger.RangeError{From: from, To: to, Reason: "inverted bounds"}
	}

	query := `SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE sequence BETWEEN ? AND ? ORDER BY sequence ASC`
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("sqlite read range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]ledger.Entry, 0, to-from+1)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite read range: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite read range: %w", err)
	}
	return checkContiguous(entries, from, to)
}

func (s *SQLiteStore) Count(ctx context.Context) (uint64, error) {
	var n uint64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite count: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// DB exposes the underlying handle for maintenance tooling and tests.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*ledger.Entry, error) {
	var (
		e       ledger.Entry
		ts      string
		kind    string
		payload string
	)
	if err := row.Scan(&e.Sequence, &e.EntryID, &ts, &kind, &payload, &e.PrevHash, &e.EntryHash); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("corrupt timestamp %q: %w", ts, err)
	}
	e.Timestamp = parsed
	e.Kind = ledger.Kind(kind)
	e.Payload = []byte(payload)
	return &e, nil
}

// checkContiguous enforces the gap-free read contract shared by the SQL
// stores: every sequence in [from, to] must be present, in order.
func checkContiguous(entries []ledger.Entry, from, to uint64) ([]ledger.Entry, error) {
	expected := from
	for i := range entries {
		if entries[i].Sequence != expected {
			missing := expected
			return nil, &ledger.RangeError{From: from, To: to, Missing: &missing}
		}
		expected++
	}
	if expected != to+1 {
		missing := expected
		return nil, &ledger.RangeError{From: from, To: to, Missing: &missing}
	}
	return entries, nil
}
