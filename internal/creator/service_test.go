package creator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"dropforge/internal/activity"
	"dropforge/internal/platform/chain"
	"dropforge/internal/platform/logger"
	dErrors "dropforge/pkg/domain-errors"
	"dropforge/pkg/testutil"
)

type CreatorServiceSuite struct {
	suite.Suite

	svc    *Service
	outbox *activity.InMemoryStore
}

func TestCreatorServiceSuite(t *testing.T) {
	suite.Run(t, new(CreatorServiceSuite))
}

func (s *CreatorServiceSuite) SetupTest() {
	log := logger.NewNop()
	s.outbox = activity.NewInMemoryStore()
	s.svc = NewService(NewInMemory(2), chain.NewCounter(5),
		activity.NewPublisher(s.outbox, log), log)
}

func (s *CreatorServiceSuite) TestRegister() {
	c, err := s.svc.Register(context.Background(), testutil.Account(1), testutil.HashOf("alice"))
	s.Require().NoError(err)
	s.Equal(uint64(1), uint64(c.ID))
	s.True(c.Active)
	s.Equal(uint64(5), c.RegisteredAt)
}

func (s *CreatorServiceSuite) TestRegisterHeightOverride() {
	ctx := testutil.CtxAt(42)
	c, err := s.svc.Register(ctx, testutil.Account(1), testutil.HashOf("alice"))
	s.Require().NoError(err)
	s.Equal(uint64(42), c.RegisteredAt)
}

func (s *CreatorServiceSuite) TestRegisterDuplicateAccount() {
	_, err := s.svc.Register(context.Background(), testutil.Account(1), testutil.HashOf("alice"))
	s.Require().NoError(err)

	_, err = s.svc.Register(context.Background(), testutil.Account(1), testutil.HashOf("other"))
	s.True(dErrors.HasKind(err, dErrors.KindAlreadyRegistered))
}

func (s *CreatorServiceSuite) TestRegisterCeiling() {
	_, err := s.svc.Register(context.Background(), testutil.Account(1), testutil.HashOf("a"))
	s.Require().NoError(err)
	_, err = s.svc.Register(context.Background(), testutil.Account(2), testutil.HashOf("b"))
	s.Require().NoError(err)

	_, err = s.svc.Register(context.Background(), testutil.Account(3), testutil.HashOf("c"))
	s.True(dErrors.HasKind(err, dErrors.KindCapacityExceeded))
}

func (s *CreatorServiceSuite) TestUpdateHandleOwnerOnly() {
	c, err := s.svc.Register(context.Background(), testutil.Account(1), testutil.HashOf("alice"))
	s.Require().NoError(err)

	err = s.svc.UpdateHandle(context.Background(), c.ID, testutil.Account(2), testutil.HashOf("mallory"))
	s.True(dErrors.HasKind(err, dErrors.KindNotOwner))

	s.Require().NoError(s.svc.UpdateHandle(context.Background(), c.ID, testutil.Account(1), testutil.HashOf("alice-2")))
	got, err := s.svc.Get(context.Background(), c.ID)
	s.Require().NoError(err)
	s.Equal(testutil.HashOf("alice-2"), got.HandleFingerprint)
}

func (s *CreatorServiceSuite) TestDeactivate() {
	c, err := s.svc.Register(context.Background(), testutil.Account(1), testutil.HashOf("alice"))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Deactivate(context.Background(), c.ID))
	got, err := s.svc.Get(context.Background(), c.ID)
	s.Require().NoError(err)
	s.False(got.Active)

	// One-way: a second deactivation is an invalid transition, and the
	// record stays retrievable (absent is distinct from inactive).
	err = s.svc.Deactivate(context.Background(), c.ID)
	s.Error(err)
}

func (s *CreatorServiceSuite) TestGetUnknown() {
	_, err := s.svc.Get(context.Background(), 99)
	s.True(dErrors.HasKind(err, dErrors.KindCreatorNotFound))

	_, err = s.svc.Get(context.Background(), 0)
	s.True(dErrors.HasKind(err, dErrors.KindCreatorNotFound))
}

func (s *CreatorServiceSuite) TestGetByAccount() {
	c, err := s.svc.Register(context.Background(), testutil.Account(1), testutil.HashOf("alice"))
	s.Require().NoError(err)

	got, err := s.svc.GetByAccount(context.Background(), testutil.Account(1))
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)

	_, err = s.svc.GetByAccount(context.Background(), testutil.Account(2))
	s.True(dErrors.HasKind(err, dErrors.KindCreatorNotFound))
}

func (s *CreatorServiceSuite) TestCounters() {
	c, err := s.svc.Register(context.Background(), testutil.Account(1), testutil.HashOf("alice"))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.RecordDropScheduled(context.Background(), c.ID))
	s.Require().NoError(s.svc.RecordUnitsMinted(context.Background(), c.ID, 3))

	got, err := s.svc.Get(context.Background(), c.ID)
	s.Require().NoError(err)
	s.Equal(uint64(1), got.DropsCreated)
	s.Equal(uint64(3), got.UnitsMinted)
}
