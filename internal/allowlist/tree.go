package allowlist

// Tree builds the full accumulator over a set of leaves so operators (and
// tests) can derive roots and per-leaf proofs with the same sorted-pair rule
// the verifier applies. Level 0 holds the leaves; the last level is the root.

import "dropforge/pkg/domain"

type Tree struct {
	levels [][]domain.Hash
}

// BuildTree constructs the accumulator. An odd level is padded by duplicating
// its last node. Returns nil for an empty leaf set: an empty allowlist has no
// root, matching the zero-root-verifies-nothing rule.
func BuildTree(leaves []domain.Hash) *Tree {
	if len(leaves) == 0 {
		return nil
	}

	level := make([]domain.Hash, len(leaves))
	copy(level, leaves)

	levels := [][]domain.Hash{level}
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]domain.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = combine(level[i], level[i+1])
		}
		levels = append(levels, next)
		level = next
	}
	return &Tree{levels: levels}
}

// Root returns the accumulator root.
func (t *Tree) Root() domain.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// ProofFor returns the sibling path for the leaf at index, bottom-up. The
// path carries no position bits; the sorted-pair rule makes them unnecessary.
func (t *Tree) ProofFor(index int) []domain.Hash {
	if index < 0 || index >= len(t.levels[0]) {
		return nil
	}
	proof := make([]domain.Hash, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling >= len(level) {
			// Odd level: the node was paired with its own duplicate.
			sibling = index
		}
		proof = append(proof, level[sibling])
		index /= 2
	}
	return proof
}
