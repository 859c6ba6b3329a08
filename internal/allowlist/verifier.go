// Package allowlist verifies phase allowlist membership proofs.
//
// A phase's allowlist is committed to as the root of a binary hash
// accumulator over eligible accounts. Proofs are verified with a sorted-pair
// folding rule: at every step the two nodes being combined are hashed in
// ascending byte order, so a proof carries no left/right positional
// information and verifies identically for leaves that sat on either side of
// their sibling.
package allowlist

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"dropforge/pkg/domain"
)

// domainSalt is the static component of the domain tag. Bump the suffix if
// the leaf layout ever changes.
const domainSalt = "dropforge/allowlist/v1"

// DefaultMaxProofLength bounds proof size for request sanity. 32 levels cover
// ~4 billion leaves, far beyond any realistic allowlist.
const DefaultMaxProofLength = 32

// Verifier checks allowlist membership proofs against a phase's committed
// root. It is pure: no state, no error returns, a bad proof is simply false.
type Verifier struct {
	domainTag domain.Hash
	maxProof  int
}

// NewVerifier derives the deployment's domain tag from the network ID and a
// per-deployment seed. Two deployments with different seeds produce disjoint
// leaf spaces, so a proof valid on one can never be replayed on the other.
func NewVerifier(networkID, deploymentSeed string, maxProofLength int) *Verifier {
	if maxProofLength <= 0 {
		maxProofLength = DefaultMaxProofLength
	}
	h := sha3.New256()
	h.Write([]byte(networkID))
	h.Write([]byte{0})
	h.Write([]byte(deploymentSeed))
	h.Write([]byte{0})
	h.Write([]byte(domainSalt))
	return &Verifier{
		domainTag: domain.HashFromBytes(h.Sum(nil)),
		maxProof:  maxProofLength,
	}
}

// DomainTag exposes the derived tag for diagnostics and tooling.
func (v *Verifier) DomainTag() domain.Hash { return v.domainTag }

// Verify reports whether account is committed under root for the given drop
// and phase. A zero root verifies nothing; an overlong proof is rejected
// outright.
func (v *Verifier) Verify(dropID domain.DropID, phase domain.PhaseIndex, account domain.Account, root domain.Hash, proof []domain.Hash) bool {
	if root.IsZero() {
		return false
	}
	if len(proof) > v.maxProof {
		return false
	}
	node := v.Leaf(dropID, phase, account)
	for _, sibling := range proof {
		node = combine(node, sibling)
	}
	return node == root
}

// Leaf computes the accumulator leaf for an account within one (drop, phase)
// pair. The drop and phase are part of the preimage so one account's leaf in
// phase 0 proves nothing about phase 1.
func (v *Verifier) Leaf(dropID domain.DropID, phase domain.PhaseIndex, account domain.Account) domain.Hash {
	var dropBytes [8]byte
	binary.BigEndian.PutUint64(dropBytes[:], uint64(dropID))

	h := sha3.New256()
	h.Write(v.domainTag[:])
	h.Write(dropBytes[:])
	h.Write([]byte{byte(phase)})
	h.Write(account[:])
	return domain.HashFromBytes(h.Sum(nil))
}

// combine hashes a pair of nodes smaller-first. The ordering makes the fold
// commutative-safe: verification does not care which side of the tree the
// leaf originally occupied.
func combine(a, b domain.Hash) domain.Hash {
	h := sha3.New256()
	if bytes.Compare(a[:], b[:]) <= 0 {
		h.Write(a[:])
		h.Write(b[:])
	} else {
		h.Write(b[:])
		h.Write(a[:])
	}
	return domain.HashFromBytes(h.Sum(nil))
}
