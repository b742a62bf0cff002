package merkle

import "fmt"

// InclusionProof lets a verifier confirm one leaf belongs to a tree with a
// known root.
type InclusionProof struct {
	LeafIndex int         `json:"leaf_index"`
	LeafHash  string      `json:"leaf_hash"`
	Root      string      `json:"root"`
	Path      []ProofStep `json:"path"`
}

// ProofStep is one sibling on the way up.
type ProofStep struct {
	Side        string `json:"side"` // "L" or "R"
	SiblingHash string `json:"sibling_hash"`
}

// Prove produces an inclusion proof for the leaf at index.
func (t *Tree) Prove(index int) (*InclusionProof, error) {
	if index < 0 || index >= len(t.Leaves) {
		return nil, fmt.Errorf("merkle: leaf index %d out of range", index)
	}

	proof := &InclusionProof{
		LeafIndex: index,
		LeafHash:  t.Leaves[index],
		Root:      t.Root,
	}

	pos := index
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := pos ^ 1
		if sibling >= len(level) {
			// Odd level; the last node pairs with its own duplicate.
			sibling = pos
		}
		side := "R"
		if sibling < pos {
			side = "L"
		}
		proof.Path = append(proof.Path, ProofStep{Side: side, SiblingHash: level[sibling]})
		pos /= 2
	}
	return proof, nil
}

// Verify checks the proof against expectedRoot.
func Verify(proof *InclusionProof, expectedRoot string) bool {
	if proof == nil || proof.Root != expectedRoot {
		return false
	}

	current := proof.LeafHash
	for _, step := range proof.Path {
		if step.Side == "L" {
			current = nodeHash(step.SiblingHash, current)
		} else {
			current = nodeHash(current, step.SiblingHash)
		}
	}
	return current == expectedRoot
}
