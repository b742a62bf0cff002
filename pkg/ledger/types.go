// Package ledger implements the append-only, hash-chained, tamper-evident
// log of HydroHub business events. The Service is the only component that
// constructs entries; producers append through it and reporting consumers
// read through it.
package ledger

import (
	"encoding/json"
	"time"
)

// Kind tags the business event type of an entry.
type Kind string

const (
	KindSale                Kind = "sale"
	KindExpense             Kind = "expense"
	KindInventoryAdjustment Kind = "inventory_adjustment"
	KindCorrection          Kind = "correction"

	// KindCheckpoint is reserved for archival rotation: its payload carries
	// the hash of the last entry before a trim so verification can re-anchor
	// without the full history.
	KindCheckpoint Kind = "checkpoint"
)

// Valid reports whether k is a known event kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSale, KindExpense, KindInventoryAdjustment, KindCorrection, KindCheckpoint:
		return true
	}
	return false
}

// Entry is one immutable record of a business event. Entries are created
// exactly once by Service.Append, read many times, and never updated.
type Entry struct {
	EntryID   string          `json:"entry_id"`
	Sequence  uint64          `json:"sequence"`
	Timestamp time.Time       `json:"timestamp"`
	Kind      Kind            `json:"event_kind"`
	Payload   json.RawMessage `json:"payload"`
	PrevHash  string          `json:"prev_hash"`
	EntryHash string          `json:"entry_hash"`
}

// The hashchain engine views entries through these accessors. EntryID is
// deliberately outside the hash preimage: it is a cross-reference handle for
// corrections, not chain material.

func (e Entry) EntrySequence() uint64     { return e.Sequence }
func (e Entry) EntryTimestamp() time.Time { return e.Timestamp }
func (e Entry) EntryKind() string         { return string(e.Kind) }
func (e Entry) EntryPayload() []byte      { return e.Payload }
func (e Entry) EntryPrevHash() string     { return e.PrevHash }
func (e Entry) EntryOwnHash() string      { return e.EntryHash }

// BreakReason classifies the first defect found by verification.
type BreakReason string

const (
	ReasonHashMismatch BreakReason = "hash_mismatch"
	ReasonLinkMismatch BreakReason = "link_mismatch"
	ReasonSequenceGap  BreakReason = "sequence_gap"

	// ReasonNoAnchor means a partial range was verified without the expected
	// hash of the entry before it. Verification fails closed rather than
	// assuming an anchor.
	ReasonNoAnchor BreakReason = "no_anchor"
)

// Report is the machine-readable outcome of a verification run. A broken
// chain is a result, not an error: verification stops at the first break
// since nothing past it can be trusted.
type Report struct {
	OK                  bool        `json:"ok"`
	CheckedCount        int         `json:"checked_count"`
	FirstBrokenSequence *uint64     `json:"first_broken_sequence,omitempty"`
	Reason              BreakReason `json:"reason,omitempty"`
}

// BundleVersion is the current export bundle schema version. The bundle
// format evolves additively only; verifiers must tolerate unknown fields.
const BundleVersion = "1"

// Bundle is the exported representation of a chain segment. AnchorHash is the
// entry hash of the entry immediately before FromSequence (or the genesis
// constant), so an external verifier can run the link check without access to
// the full history.
type Bundle struct {
	Version      string    `json:"version"`
	BundleID     string    `json:"bundle_id"`
	CreatedAt    time.Time `json:"created_at"`
	FromSequence uint64    `json:"from_sequence"`
	ToSequence   uint64    `json:"to_sequence"`
	AnchorHash   string    `json:"anchor_hash"`
	Entries      []Entry   `json:"entries"`
}
