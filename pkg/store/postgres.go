package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hydrohub/ledger/pkg/ledger"
)

// PostgresStore persists the chain in Postgres for deployments where the
// point-of-sale database already lives there. Same contract and same
// timestamp encoding as SQLiteStore; the sequence primary key turns append
// races into unique violations.
type PostgresStore struct {
	db *sql.DB
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	sequence   BIGINT PRIMARY KEY,
	entry_id   TEXT NOT NULL UNIQUE,
	timestamp  TEXT NOT NULL,
	event_kind TEXT NOT NULL,
	payload    TEXT NOT NULL,
	prev_hash  TEXT NOT NULL,
	entry_hash TEXT NOT NULL UNIQUE
);`

// NewPostgresStore wraps an open connection and ensures the schema exists.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Append(ctx context.Context, e ledger.Entry) error {
	const query = `INSERT INTO ledger_entries
		(sequence, entry_id, timestamp, event_kind, payload, prev_hash, entry_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		e.Sequence, e.EntryID, e.Timestamp.UTC().Format(time.RFC3339Nano),
		string(e.Kind), string(e.Payload), e.PrevHash, e.EntryHash,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ledger.ErrSequenceConflict
		}
		return fmt.Errorf("postgres append: %w", err)
	}
	return nil
}

func (s *PostgresStore) Tail(ctx context.Context) (*ledger.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries ORDER BY sequence DESC LIMIT 1`
	e, err := scanEntry(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres tail: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ReadRange(ctx context.Context, from, to uint64) ([]ledger.Entry, error) {
	if from > to {
		return nil, &ledger.RangeError{From: from, To: to, Reason: "inverted bounds"}
	}

	query := `SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE sequence BETWEEN $1 AND $2 ORDER BY sequence ASC`
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres read range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]ledger.Entry, 0, to-from+1)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres read range: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres read range: %w", err)
	}
	return checkContiguous(entries, from, to)
}

func (s *PostgresStore) Count(ctx context.Context) (uint64, error) {
	var n uint64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres count: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
