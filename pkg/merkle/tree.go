// Package merkle builds Merkle trees over ordered ledger entry hashes. Proof
// packs carry the root so an auditor can spot-check a single entry's
// membership without re-walking the whole chain.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	leafTag = "hydrohub:ledger:leaf:v1"
	nodeTag = "hydrohub:ledger:node:v1"
)

// Tree is a Merkle tree over entry hashes, leaves in sequence order.
type Tree struct {
	Leaves []string
	Root   string
	levels [][]string
}

// Build constructs a tree from the ordered entry hashes of a chain segment.
func Build(entryHashes []string) (*Tree, error) {
	if len(entryHashes) == 0 {
		return nil, fmt.Errorf("merkle: no leaves")
	}

	leaves := make([]string, len(entryHashes))
	for i, h := range entryHashes {
		raw, err := hex.DecodeString(h)
		if err != nil || len(raw) != sha256.Size {
			return nil, fmt.Errorf("merkle: leaf %d is not a SHA-256 hex digest", i)
		}
		leaves[i] = leafHash(raw)
	}

	t := &Tree{Leaves: leaves}
	level := leaves
	for {
		t.levels = append(t.levels, level)
		if len(level) == 1 {
			break
		}
		level = nextLevel(level)
	}
	t.Root = level[0]
	return t, nil
}

func leafHash(entryHash []byte) string {
	var buf bytes.Buffer
	buf.WriteString(leafTag)
	buf.WriteByte(0)
	buf.Write(entryHash)
	return sha256Hex(buf.Bytes())
}

func nodeHash(left, right string) string {
	var buf bytes.Buffer
	buf.WriteString(nodeTag)
	buf.WriteByte(0)
	buf.Write(hexToBytes(left))
	buf.Write(hexToBytes(right))
	return sha256Hex(buf.Bytes())
}

func nextLevel(hashes []string) []string {
	count := len(hashes)
	if count%2 != 0 {
		// Duplicate the last node to pair it.
		hashes = append(hashes, hashes[count-1])
		count++
	}
	out := make([]string, count/2)
	for i := 0; i < count; i += 2 {
		out[i/2] = nodeHash(hashes[i], hashes[i+1])
	}
	return out
}

func sha256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func hexToBytes(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}
