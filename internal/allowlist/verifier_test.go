package allowlist

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/suite"

	"dropforge/pkg/domain"
)

type VerifierSuite struct {
	suite.Suite

	verifier *Verifier
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupTest() {
	s.verifier = NewVerifier("testnet", "seed-1", DefaultMaxProofLength)
}

func account(tag byte) domain.Account {
	var a domain.Account
	for i := range a {
		a[i] = tag
	}
	return a
}

func (s *VerifierSuite) leaves(dropID domain.DropID, phase domain.PhaseIndex, accounts ...domain.Account) []domain.Hash {
	out := make([]domain.Hash, len(accounts))
	for i, a := range accounts {
		out[i] = s.verifier.Leaf(dropID, phase, a)
	}
	return out
}

// TestEveryLeafVerifies checks position independence: a proof verifies no
// matter which side of its sibling the leaf sat on.
func (s *VerifierSuite) TestEveryLeafVerifies() {
	accounts := []domain.Account{account(1), account(2), account(3), account(4), account(5)}
	tree := BuildTree(s.leaves(7, 0, accounts...))
	s.Require().NotNil(tree)

	for i, a := range accounts {
		proof := tree.ProofFor(i)
		s.True(s.verifier.Verify(7, 0, a, tree.Root(), proof), "leaf %d must verify", i)
	}
}

func (s *VerifierSuite) TestSingleLeafTree() {
	tree := BuildTree(s.leaves(1, 0, account(9)))
	s.Require().NotNil(tree)
	s.Empty(tree.ProofFor(0))
	s.True(s.verifier.Verify(1, 0, account(9), tree.Root(), nil))
}

func (s *VerifierSuite) TestRejections() {
	accounts := []domain.Account{account(1), account(2), account(3)}
	tree := BuildTree(s.leaves(7, 0, accounts...))
	proof := tree.ProofFor(0)
	root := tree.Root()

	s.Run("zero root verifies nothing", func() {
		s.False(s.verifier.Verify(7, 0, account(1), domain.ZeroHash, proof))
	})

	s.Run("non-member rejected", func() {
		s.False(s.verifier.Verify(7, 0, account(42), root, proof))
	})

	s.Run("proof for another member rejected", func() {
		s.False(s.verifier.Verify(7, 0, account(2), root, proof))
	})

	s.Run("wrong drop rejected", func() {
		s.False(s.verifier.Verify(8, 0, account(1), root, proof))
	})

	s.Run("wrong phase rejected", func() {
		s.False(s.verifier.Verify(7, 1, account(1), root, proof))
	})

	s.Run("overlong proof rejected", func() {
		long := make([]domain.Hash, DefaultMaxProofLength+1)
		s.False(s.verifier.Verify(7, 0, account(1), root, long))
	})

	s.Run("truncated proof rejected", func() {
		s.False(s.verifier.Verify(7, 0, account(1), root, proof[:len(proof)-1]))
	})
}

// TestDomainSeparation checks that two deployments derive disjoint leaf
// spaces, so proofs never replay across them.
func (s *VerifierSuite) TestDomainSeparation() {
	other := NewVerifier("testnet", "seed-2", DefaultMaxProofLength)
	s.NotEqual(s.verifier.DomainTag(), other.DomainTag())

	tree := BuildTree(s.leaves(7, 0, account(1), account(2)))
	s.False(other.Verify(7, 0, account(1), tree.Root(), tree.ProofFor(0)))
}

func (s *VerifierSuite) TestEmptyLeafSet() {
	s.Nil(BuildTree(nil))
}

// TestProofSymmetryProperty asserts the sorted-pair fold over arbitrary tree
// shapes: every member of a randomly sized allowlist proves membership, and
// an outsider never does.
func TestProofSymmetryProperty(t *testing.T) {
	verifier := NewVerifier("testnet", "prop-seed", DefaultMaxProofLength)

	properties := gopter.NewProperties(nil)
	properties.Property("every member verifies, outsiders never do", prop.ForAll(
		func(size int, pick int) bool {
			accounts := make([]domain.Account, size)
			leaves := make([]domain.Hash, size)
			for i := range accounts {
				accounts[i] = account(byte(i + 1))
				leaves[i] = verifier.Leaf(3, 1, accounts[i])
			}
			tree := BuildTree(leaves)
			index := pick % size
			proof := tree.ProofFor(index)
			if !verifier.Verify(3, 1, accounts[index], tree.Root(), proof) {
				return false
			}
			outsider := account(0xFF)
			return !verifier.Verify(3, 1, outsider, tree.Root(), proof)
		},
		gen.IntRange(1, 64),
		gen.IntRange(0, 1<<30),
	))
	properties.TestingRun(t)
}
