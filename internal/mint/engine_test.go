package mint

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"dropforge/internal/activity"
	"dropforge/internal/allowlist"
	"dropforge/internal/bank"
	"dropforge/internal/creator"
	"dropforge/internal/drop"
	"dropforge/internal/ledger"
	"dropforge/internal/platform/chain"
	"dropforge/internal/platform/locks"
	"dropforge/internal/platform/logger"
	"dropforge/internal/system"
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
	"dropforge/pkg/testutil"
)

// MintEngineSuite wires the engine against the real in-memory stack: creator
// and drop services, proceeds ledger, bank, and allowlist verifier. The only
// doubles are the stores themselves.
type MintEngineSuite struct {
	suite.Suite

	engine     *Engine
	creatorSvc *creator.Service
	dropSvc    *drop.Service
	ledgerSvc  *ledger.Service
	bank       *bank.Service
	sys        *system.Service
	verifier   *allowlist.Verifier
	store      *InMemory
	dropStore  *drop.InMemory

	owner  domain.Account
	minter domain.Account
	admin  domain.Account

	creatorID domain.CreatorID
}

func TestMintEngineSuite(t *testing.T) {
	suite.Run(t, new(MintEngineSuite))
}

func (s *MintEngineSuite) SetupTest() {
	s.owner = testutil.Account(1)
	s.minter = testutil.Account(2)
	s.admin = testutil.Account(9)

	log := logger.NewNop()
	outbox := activity.NewInMemoryStore()
	pub := activity.NewPublisher(outbox, log)
	heights := chain.NewCounter(15)
	dropLock := locks.NewKeyed[domain.DropID]()

	s.sys = system.New(system.Roles{
		Admin:        s.admin,
		Keeper:       testutil.Account(8),
		Treasury:     testutil.Account(3),
		FeeRecipient: testutil.Account(4),
	}, log)
	s.bank = bank.NewService()
	s.verifier = allowlist.NewVerifier("testnet", "seed-1", allowlist.DefaultMaxProofLength)

	s.creatorSvc = creator.NewService(creator.NewInMemory(0), heights, pub, log)
	s.dropStore = drop.NewInMemory(0)
	s.dropSvc = drop.NewService(s.dropStore, s.creatorSvc, heights, dropLock, pub, log,
		drop.Config{Keeper: testutil.Account(8), FeeBpsCeiling: 1000, PhaseCapacity: 3})
	s.ledgerSvc = ledger.NewService(ledger.NewInMemory(), s.dropSvc, s.creatorSvc,
		s.sys, s.bank, heights, dropLock, pub, log)
	s.store = NewInMemory()
	s.engine = NewEngine(s.store, s.dropStore, s.creatorSvc, s.ledgerSvc, s.verifier,
		s.sys, s.bank, heights, dropLock, pub, log)

	c, err := s.creatorSvc.Register(context.Background(), s.owner, testutil.HashOf("alice"))
	s.Require().NoError(err)
	s.creatorID = c.ID

	s.Require().NoError(s.bank.Deposit(context.Background(), s.minter, 1_000_000))
}

// schedule creates a drop with one open phase over heights [10, 20].
func (s *MintEngineSuite) schedule(maxSupply, unitPrice uint64, feeBps uint32, perWalletCap uint64) domain.DropID {
	d, err := s.dropSvc.Schedule(context.Background(), s.creatorID, s.owner,
		testutil.HashOf("art"), maxSupply, unitPrice, feeBps, perWalletCap)
	s.Require().NoError(err)
	_, err = s.dropSvc.AddPhase(context.Background(), d.ID, s.owner, 10, 20, false, domain.ZeroHash)
	s.Require().NoError(err)
	return d.ID
}

func (s *MintEngineSuite) mint(id domain.DropID, quantity, payment uint64) (*Receipt, error) {
	return s.engine.Mint(testutil.CtxAt(15), Request{
		DropID:   id,
		Quantity: quantity,
		Payment:  payment,
		Minter:   s.minter,
	})
}

func (s *MintEngineSuite) TestMintCommitsEverywhere() {
	id := s.schedule(100, 1000, 500, 0)

	receipt, err := s.mint(id, 3, 3000)
	s.Require().NoError(err)
	s.Equal(uint64(0), receipt.FirstOrdinal)
	s.Equal(uint64(3), receipt.Quantity)
	s.Equal(uint64(3000), receipt.Paid)
	s.Zero(receipt.Refunded)

	d, err := s.dropSvc.Get(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(uint64(3), d.MintedSupply)
	s.Equal(uint64(3), d.Phases[0].MintedCount)

	b, err := s.ledgerSvc.Buckets(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(uint64(2850), b.CreatorPending)
	s.Equal(uint64(75), b.TreasuryPending)
	s.Equal(uint64(75), b.FeePending)

	c, err := s.creatorSvc.Get(context.Background(), s.creatorID)
	s.Require().NoError(err)
	s.Equal(uint64(3), c.UnitsMinted)

	s.Equal(uint64(1_000_000-3000), s.bank.Balance(context.Background(), s.minter))

	count, err := s.engine.WalletMintCount(context.Background(), id, s.minter)
	s.Require().NoError(err)
	s.Equal(uint64(3), count)
}

func (s *MintEngineSuite) TestPhaseWindow() {
	id := s.schedule(100, 1000, 500, 0)

	mintAt := func(height uint64) error {
		_, err := s.engine.Mint(testutil.CtxAt(height), Request{
			DropID: id, Quantity: 1, Payment: 1000, Minter: s.minter,
		})
		return err
	}

	s.True(dErrors.HasKind(mintAt(5), dErrors.KindPhaseNotStarted))
	s.True(dErrors.HasKind(mintAt(9), dErrors.KindPhaseNotStarted))
	s.True(dErrors.HasKind(mintAt(25), dErrors.KindPhaseEnded))
	s.True(dErrors.HasKind(mintAt(21), dErrors.KindPhaseEnded))

	// Bounds are inclusive on both ends.
	s.NoError(mintAt(10))
	s.NoError(mintAt(20))
}

func (s *MintEngineSuite) TestPerWalletCap() {
	id := s.schedule(100, 1000, 500, 2)

	_, err := s.mint(id, 2, 2000)
	s.Require().NoError(err)

	_, err = s.mint(id, 1, 1000)
	s.True(dErrors.HasKind(err, dErrors.KindMaxPerWalletExceeded))

	// Another wallet is unaffected by the first one's count.
	s.Require().NoError(s.bank.Deposit(context.Background(), testutil.Account(5), 10_000))
	_, err = s.engine.Mint(testutil.CtxAt(15), Request{
		DropID: id, Quantity: 2, Payment: 2000, Minter: testutil.Account(5),
	})
	s.NoError(err)
}

func (s *MintEngineSuite) TestOverpaymentIsRefunded() {
	id := s.schedule(100, 1000, 500, 0)

	receipt, err := s.mint(id, 1, 1500)
	s.Require().NoError(err)
	s.Equal(uint64(1000), receipt.Paid)
	s.Equal(uint64(500), receipt.Refunded)

	// Only the required total hit the ledger; the refund never did.
	b, err := s.ledgerSvc.Buckets(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(uint64(1000), b.Accrued)
	s.Equal(uint64(1_000_000-1000), s.bank.Balance(context.Background(), s.minter))
}

func (s *MintEngineSuite) TestAllowlistPhase() {
	d, err := s.dropSvc.Schedule(context.Background(), s.creatorID, s.owner,
		testutil.HashOf("art"), 100, 1000, 500, 0)
	s.Require().NoError(err)

	members := []domain.Account{s.minter, testutil.Account(5), testutil.Account(6)}
	leaves := make([]domain.Hash, len(members))
	for i, m := range members {
		leaves[i] = s.verifier.Leaf(d.ID, 0, m)
	}
	tree := allowlist.BuildTree(leaves)
	_, err = s.dropSvc.AddPhase(context.Background(), d.ID, s.owner, 10, 20, true, tree.Root())
	s.Require().NoError(err)

	_, err = s.engine.Mint(testutil.CtxAt(15), Request{
		DropID: d.ID, Quantity: 1, Payment: 1000, Minter: s.minter,
	})
	s.True(dErrors.HasKind(err, dErrors.KindAllowlistRequired))

	badProof := []domain.Hash{testutil.HashOf("junk")}
	_, err = s.engine.Mint(testutil.CtxAt(15), Request{
		DropID: d.ID, Quantity: 1, Payment: 1000, Proof: badProof, Minter: s.minter,
	})
	s.True(dErrors.HasKind(err, dErrors.KindInvalidProof))

	receipt, err := s.engine.Mint(testutil.CtxAt(15), Request{
		DropID: d.ID, Quantity: 1, Payment: 1000, Proof: tree.ProofFor(0), Minter: s.minter,
	})
	s.Require().NoError(err)
	s.Equal(uint64(1), receipt.Quantity)
}

func (s *MintEngineSuite) TestRejections() {
	id := s.schedule(5, 1000, 500, 0)
	ctx := context.Background()

	s.Run("zero quantity", func() {
		_, err := s.mint(id, 0, 0)
		s.True(dErrors.HasKind(err, dErrors.KindZeroAmount))
	})

	s.Run("launchpad paused", func() {
		s.Require().NoError(s.sys.SetPaused(ctx, s.admin, true))
		_, err := s.mint(id, 1, 1000)
		s.True(dErrors.HasKind(err, dErrors.KindLaunchpadPaused))
		s.Require().NoError(s.sys.SetPaused(ctx, s.admin, false))
	})

	s.Run("drop paused", func() {
		s.Require().NoError(s.dropSvc.SetPaused(ctx, id, s.owner, true))
		_, err := s.mint(id, 1, 1000)
		s.True(dErrors.HasKind(err, dErrors.KindDropPaused))
		s.Require().NoError(s.dropSvc.SetPaused(ctx, id, s.owner, false))
	})

	s.Run("unknown drop", func() {
		_, err := s.mint(99, 1, 1000)
		s.True(dErrors.HasKind(err, dErrors.KindDropNotFound))
	})

	s.Run("unconfigured phase", func() {
		_, err := s.engine.Mint(testutil.CtxAt(15), Request{
			DropID: id, Phase: 2, Quantity: 1, Payment: 1000, Minter: s.minter,
		})
		s.True(dErrors.HasKind(err, dErrors.KindPhaseNotFound))
	})

	s.Run("insufficient payment", func() {
		_, err := s.mint(id, 2, 1999)
		s.True(dErrors.HasKind(err, dErrors.KindInsufficientPayment))
	})

	s.Run("supply exhaustion", func() {
		_, err := s.mint(id, 6, 6000)
		s.True(dErrors.HasKind(err, dErrors.KindMaxSupplyReached))

		_, err = s.mint(id, 5, 5000)
		s.Require().NoError(err)
		_, err = s.mint(id, 1, 1000)
		s.True(dErrors.HasKind(err, dErrors.KindMaxSupplyReached))
	})
}

func (s *MintEngineSuite) TestPhaseCap() {
	id := s.schedule(100, 1000, 500, 0)
	s.Require().NoError(s.dropSvc.SetPhaseCap(context.Background(), id, 0, s.owner, 2))

	_, err := s.mint(id, 3, 3000)
	s.True(dErrors.HasKind(err, dErrors.KindPhaseCapReached))

	_, err = s.mint(id, 2, 2000)
	s.Require().NoError(err)
	_, err = s.mint(id, 1, 1000)
	s.True(dErrors.HasKind(err, dErrors.KindPhaseCapReached))
}

func (s *MintEngineSuite) TestDeactivatedCreatorBlocksMint() {
	id := s.schedule(100, 1000, 500, 0)
	s.Require().NoError(s.creatorSvc.Deactivate(context.Background(), s.creatorID))

	_, err := s.mint(id, 1, 1000)
	s.True(dErrors.HasKind(err, dErrors.KindCreatorInactive))
}

func (s *MintEngineSuite) TestInsufficientFundsLeavesNothingMinted() {
	id := s.schedule(100, 1000, 500, 0)
	broke := testutil.Account(7)

	_, err := s.engine.Mint(testutil.CtxAt(15), Request{
		DropID: id, Quantity: 1, Payment: 1000, Minter: broke,
	})
	s.True(dErrors.HasKind(err, dErrors.KindTransferFailed))

	d, err := s.dropSvc.Get(context.Background(), id)
	s.Require().NoError(err)
	s.Zero(d.MintedSupply)

	b, err := s.ledgerSvc.Buckets(context.Background(), id)
	s.Require().NoError(err)
	s.Zero(b.Accrued)
}

func (s *MintEngineSuite) TestOrdinalsAndOwnership() {
	id := s.schedule(100, 1000, 500, 0)
	other := testutil.Account(5)
	s.Require().NoError(s.bank.Deposit(context.Background(), other, 10_000))

	first, err := s.mint(id, 2, 2000)
	s.Require().NoError(err)
	s.Equal(uint64(0), first.FirstOrdinal)

	second, err := s.engine.Mint(testutil.CtxAt(15), Request{
		DropID: id, Quantity: 3, Payment: 3000, Minter: other,
	})
	s.Require().NoError(err)
	s.Equal(uint64(2), second.FirstOrdinal)

	for ordinal, want := range map[uint64]domain.Account{
		0: s.minter, 1: s.minter, 2: other, 3: other, 4: other,
	} {
		owner, err := s.engine.OwnerOf(context.Background(), id, ordinal)
		s.Require().NoError(err)
		s.Equal(want, owner)
	}

	_, err = s.engine.OwnerOf(context.Background(), id, 5)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.engine.OwnerOf(context.Background(), 99, 0)
	s.True(dErrors.HasKind(err, dErrors.KindDropNotFound))
}

func (s *MintEngineSuite) TestMintedDropsIndex() {
	a := s.schedule(100, 1000, 500, 0)
	b := s.schedule(100, 1000, 500, 0)

	_, err := s.mint(b, 1, 1000)
	s.Require().NoError(err)
	_, err = s.mint(a, 1, 1000)
	s.Require().NoError(err)
	// A second mint from the same drop does not duplicate the index entry.
	_, err = s.mint(b, 1, 1000)
	s.Require().NoError(err)

	ids, err := s.engine.MintedDrops(context.Background(), s.minter)
	s.Require().NoError(err)
	s.Equal([]domain.DropID{b, a}, ids)
}

// TestConcurrentMintsNeverOversell hammers one drop from many goroutines and
// checks the supply cap held.
func (s *MintEngineSuite) TestConcurrentMintsNeverOversell() {
	id := s.schedule(10, 1000, 500, 0)

	const attempts = 25
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wallet := testutil.Account(byte(100 + i))
		s.Require().NoError(s.bank.Deposit(context.Background(), wallet, 1000))
		wg.Add(1)
		go func(i int, wallet domain.Account) {
			defer wg.Done()
			_, errs[i] = s.engine.Mint(testutil.CtxAt(15), Request{
				DropID: id, Quantity: 1, Payment: 1000, Minter: wallet,
			})
		}(i, wallet)
	}
	wg.Wait()

	var minted int
	for _, err := range errs {
		if err == nil {
			minted++
		} else {
			s.True(dErrors.HasKind(err, dErrors.KindMaxSupplyReached))
		}
	}
	s.Equal(10, minted)

	d, err := s.dropSvc.Get(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(uint64(10), d.MintedSupply)
}
