package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hydrohub/ledger/pkg/canonical"
	"github.com/hydrohub/ledger/pkg/hashchain"
	"github.com/hydrohub/ledger/pkg/observability"
)

// Store is the durability contract the service writes through. Implementations
// persist entries in sequence order, detect lost-update races on the tail, and
// flush before returning from Append.
type Store interface {
	// Append persists entry as the new tail. Returns ErrSequenceConflict if
	// the sequence is already occupied. Durable on return.
	Append(ctx context.Context, entry Entry) error

	// Tail returns the most recently committed entry, or nil if the store is
	// empty.
	Tail(ctx context.Context) (*Entry, error)

	// ReadRange returns entries with from <= sequence <= to in ascending
	// order. Returns a *RangeError on inverted bounds or gaps.
	ReadRange(ctx context.Context, from, to uint64) ([]Entry, error)

	// Count returns the number of committed entries.
	Count(ctx context.Context) (uint64, error)

	Close() error
}

// Validator is the final guard over producer payloads, checked at append time.
// The producer contract owns payload schemas; the service only enforces them.
type Validator interface {
	Validate(kind Kind, payload []byte) error
}

// Service owns the append/verify protocol. All appends are serialized through
// a single critical section: each append must read the tail and write its
// successor atomically or the prev-hash and sequence invariants break under
// concurrent producers. Readers never take the append lock.
type Service struct {
	mu        sync.Mutex
	store     Store
	validator Validator
	metrics   *observability.Metrics
	clock     func() time.Time
	log       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock for testing.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithValidator installs the payload guard.
func WithValidator(v Validator) Option {
	return func(s *Service) { s.validator = v }
}

// WithMetrics installs append/verify instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a ledger service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		clock: time.Now,
		log:   slog.Default().With("component", "ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append commits one business event to the chain and returns the fully
// populated entry. The payload must be valid JSON; it is stored and hashed in
// RFC 8785 canonical form. Errors are never retried here: a ValidationError
// needs a corrected payload, an ErrSequenceConflict may be retried whole by
// the caller, and a StoreError must not be assumed uncommitted-or-committed.
func (s *Service) Append(ctx context.Context, kind Kind, payload []byte) (*Entry, error) {
	start := s.clock()

	if !kind.Valid() {
		return nil, &ValidationError{Kind: kind, Reason: "unknown event kind"}
	}
	if s.validator != nil {
		if err := s.validator.Validate(kind, payload); err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				return nil, err
			}
			return nil, &ValidationError{Kind: kind, Reason: err.Error(), Err: err}
		}
	}

	canon, err := canonical.Transform(payload)
	if err != nil {
		return nil, &ValidationError{Kind: kind, Reason: "payload is not canonicalizable JSON", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tail, err := s.store.Tail(ctx)
	if err != nil {
		return nil, &StoreError{Op: "tail", Err: err}
	}

	var (
		seq      uint64
		prevHash = hashchain.GenesisHash
	)
	if tail != nil {
		seq = tail.Sequence + 1
		prevHash = tail.EntryHash
	}

	ts := s.clock().UTC()
	if tail != nil && ts.Before(tail.Timestamp) {
		// Wall clock went backwards; hold the line. Ties across fast
		// successive events are legal.
		ts = tail.Timestamp
	}

	entry := Entry{
		EntryID:   uuid.New().String(),
		Sequence:  seq,
		Timestamp: ts,
		Kind:      kind,
		Payload:   canon,
		PrevHash:  prevHash,
		EntryHash: hashchain.ComputeHash(seq, ts, string(kind), canon, prevHash),
	}

	if err := s.store.Append(ctx, entry); err != nil {
		if errors.Is(err, ErrSequenceConflict) {
			return nil, err
		}
		return nil, &StoreError{Op: "append", Err: err}
	}

	s.log.DebugContext(ctx, "entry committed",
		"sequence", entry.Sequence, "kind", entry.Kind, "entry_hash", entry.EntryHash)
	if s.metrics != nil {
		s.metrics.RecordAppend(ctx, string(kind), s.clock().Sub(start))
	}
	return &entry, nil
}

// Tail returns the latest committed entry, or nil if the ledger is empty.
func (s *Service) Tail(ctx context.Context) (*Entry, error) {
	return s.store.Tail(ctx)
}

// Count returns the number of committed entries.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	return s.store.Count(ctx)
}

// ReadRange returns committed entries in ascending sequence order.
func (s *Service) ReadRange(ctx context.Context, from, to uint64) ([]Entry, error) {
	return s.store.ReadRange(ctx, from, to)
}

// VerifyAll verifies the whole chain from genesis through the current tail.
// An empty ledger verifies trivially.
func (s *Service) VerifyAll(ctx context.Context) (Report, error) {
	tail, err := s.store.Tail(ctx)
	if err != nil {
		return Report{}, &StoreError{Op: "tail", Err: err}
	}
	if tail == nil {
		return Report{OK: true}, nil
	}
	return s.Verify(ctx, 0, tail.Sequence)
}

// Verify checks entries from through to (inclusive) against the chain
// invariants. Only a range starting at genesis can anchor itself; for
// partial ranges callers must use VerifyAnchored, and Verify fails closed.
func (s *Service) Verify(ctx context.Context, from, to uint64) (Report, error) {
	if from != 0 {
		report := Report{OK: false, Reason: ReasonNoAnchor}
		s.recordVerify(ctx, report)
		return report, nil
	}
	return s.verifyRange(ctx, from, to, hashchain.GenesisHash)
}

// VerifyAnchored checks a partial range against a caller-supplied anchor: the
// entry hash of the entry immediately before from.
func (s *Service) VerifyAnchored(ctx context.Context, from, to uint64, anchorHash string) (Report, error) {
	if from == 0 && anchorHash != hashchain.GenesisHash {
		return Report{}, fmt.Errorf("ledger: a range from genesis anchors to the genesis constant")
	}
	return s.verifyRange(ctx, from, to, anchorHash)
}

func (s *Service) verifyRange(ctx context.Context, from, to uint64, anchor string) (Report, error) {
	entries, err := s.store.ReadRange(ctx, from, to)
	if err != nil {
		var rErr *RangeError
		if errors.As(err, &rErr) && rErr.Missing != nil {
			// The store refused the read outright, so no entries were
			// link-checked.
			report := Report{
				FirstBrokenSequence: rErr.Missing,
				Reason:              ReasonSequenceGap,
			}
			s.recordVerify(ctx, report)
			return report, nil
		}
		return Report{}, &StoreError{Op: "read", Err: err}
	}

	report, err := verifyEntries(ctx, entries, from, anchor)
	if err != nil {
		return Report{}, err
	}
	s.recordVerify(ctx, report)
	return report, nil
}

func (s *Service) recordVerify(ctx context.Context, r Report) {
	if !r.OK {
		s.log.WarnContext(ctx, "chain verification failed",
			"reason", r.Reason, "checked", r.CheckedCount)
	}
	if s.metrics != nil {
		s.metrics.RecordVerify(ctx, r.OK, r.CheckedCount)
	}
}

// verifyEntries walks the chain once, stopping at the first break. It is
// re-entrant and cancellable between entries; it never mutates anything.
func verifyEntries(ctx context.Context, entries []Entry, firstSeq uint64, anchor string) (Report, error) {
	report := Report{OK: true}
	expectedSeq := firstSeq
	expectedPrev := anchor

	for i := range entries {
		select {
		case <-ctx.Done():
			return Report{}, ctx.Err()
		default:
		}

		e := &entries[i]
		if e.Sequence != expectedSeq {
			broken := expectedSeq
			return Report{CheckedCount: report.CheckedCount, FirstBrokenSequence: &broken, Reason: ReasonSequenceGap}, nil
		}
		if e.PrevHash != expectedPrev {
			broken := e.Sequence
			return Report{CheckedCount: report.CheckedCount, FirstBrokenSequence: &broken, Reason: ReasonLinkMismatch}, nil
		}
		if computed := hashchain.ComputeHash(e.Sequence, e.Timestamp, string(e.Kind), e.Payload, e.PrevHash); computed != e.EntryHash {
			broken := e.Sequence
			return Report{CheckedCount: report.CheckedCount, FirstBrokenSequence: &broken, Reason: ReasonHashMismatch}, nil
		}

		report.CheckedCount++
		expectedSeq++
		expectedPrev = e.EntryHash
	}
	return report, nil
}
