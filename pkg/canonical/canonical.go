// Package canonical provides RFC 8785 (JSON Canonicalization Scheme)
// serialization for deterministic hashing of ledger payloads.
//
// Canonical form is load-bearing: every payload is hashed into the chain, so
// the byte encoding must be reproducible forever. Changing the canonical form
// invalidates all historical hashes.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// EncodingError reports a payload that cannot be canonicalized. For payloads
// already committed to the ledger this indicates corruption, never a caller
// mistake.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("canonical: payload cannot be canonicalized: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Transform returns the RFC 8785 canonical form of raw, which must be valid
// JSON. Map keys are sorted by UTF-16 code units, numbers use shortest-form
// ES6 serialization, and insignificant whitespace is removed.
func Transform(raw []byte) ([]byte, error) {
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return out, nil
}

// Marshal serializes v with encoding/json and returns its canonical form.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return Transform(raw)
}

// Hash returns the lowercase hex SHA-256 digest of the canonical form of raw.
func Hash(raw []byte) (string, error) {
	canon, err := Transform(raw)
	if err != nil {
		return "", err
	}
	return HashBytes(canon), nil
}

// HashBytes returns the lowercase hex SHA-256 digest of data as given.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
