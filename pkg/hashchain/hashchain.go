// Package hashchain computes and verifies the cryptographic link between
// consecutive ledger entries. It has no knowledge of storage; callers hand it
// already-canonical payload bytes.
package hashchain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// GenesisHash is the fixed previous-hash constant for the entry at sequence 0.
// It matches the width of a SHA-256 hex digest so storage columns need no
// special casing.
var GenesisHash = strings.Repeat("0", 64)

// domainTag prefixes every preimage so ledger hashes can never collide with
// hashes computed by other subsystems over the same bytes.
const domainTag = "hydrohub-ledger-v1"

// sep is the field separator inside the hash preimage. A control byte that
// cannot appear in RFC 8785 canonical JSON, so no two distinct field tuples
// can concatenate to the same preimage.
const sep = '\x1f'

// Entryish is the minimal view of a ledger entry the engine needs to verify
// a link. Concrete entry types satisfy it structurally.
type Entryish interface {
	EntrySequence() uint64
	EntryTimestamp() time.Time
	EntryKind() string
	EntryPayload() []byte
	EntryPrevHash() string
	EntryOwnHash() string
}

// ComputeHash returns the lowercase hex SHA-256 digest over the five entry
// fields. Timestamps are rendered as UTC RFC 3339 with nanoseconds, exactly
// the form they round-trip through storage in.
func ComputeHash(seq uint64, ts time.Time, kind string, payload []byte, prevHash string) string {
	h := sha256.New()
	h.Write([]byte(domainTag))
	h.Write([]byte{sep})
	h.Write([]byte(strconv.FormatUint(seq, 10)))
	h.Write([]byte{sep})
	h.Write([]byte(ts.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte{sep})
	h.Write([]byte(kind))
	h.Write([]byte{sep})
	h.Write(payload)
	h.Write([]byte{sep})
	h.Write([]byte(prevHash))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyLink recomputes e's hash from its stored fields and checks that
// (a) it equals the stored entry hash and (b) the stored prev-hash equals
// prev. For the genesis entry pass GenesisHash as prev.
func VerifyLink(e Entryish, prev string) bool {
	if e.EntryPrevHash() != prev {
		return false
	}
	computed := ComputeHash(e.EntrySequence(), e.EntryTimestamp(), e.EntryKind(), e.EntryPayload(), e.EntryPrevHash())
	return computed == e.EntryOwnHash()
}
