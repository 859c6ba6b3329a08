//go:build integration

package mint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"dropforge/pkg/domain"
	"dropforge/pkg/platform/sentinel"
	"dropforge/pkg/testutil"
	"dropforge/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite

	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.store = NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) TestWalletCounts() {
	ctx := context.Background()
	wallet := testutil.Account(1)

	count, err := s.store.WalletCount(ctx, 1, wallet)
	s.Require().NoError(err)
	s.Zero(count)

	after, err := s.store.AddWalletCount(ctx, 1, wallet, 2)
	s.Require().NoError(err)
	s.Equal(uint64(2), after)

	after, err = s.store.AddWalletCount(ctx, 1, wallet, 3)
	s.Require().NoError(err)
	s.Equal(uint64(5), after)

	// Counts are scoped per drop.
	other, err := s.store.WalletCount(ctx, 2, wallet)
	s.Require().NoError(err)
	s.Zero(other)
}

func (s *RedisStoreSuite) TestOwnershipRange() {
	ctx := context.Background()
	wallet := testutil.Account(1)

	s.Require().NoError(s.store.RecordOwnership(ctx, 1, 0, 3, wallet))

	for ordinal := uint64(0); ordinal < 3; ordinal++ {
		owner, err := s.store.OwnerOf(ctx, 1, ordinal)
		s.Require().NoError(err)
		s.Equal(wallet, owner)
	}

	_, err := s.store.OwnerOf(ctx, 1, 3)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestMintedDropsOrder() {
	ctx := context.Background()
	wallet := testutil.Account(1)

	s.Require().NoError(s.store.AppendMintedDrop(ctx, wallet, 5))
	s.Require().NoError(s.store.AppendMintedDrop(ctx, wallet, 2))

	ids, err := s.store.MintedDrops(ctx, wallet)
	s.Require().NoError(err)
	s.Equal([]domain.DropID{5, 2}, ids)

	empty, err := s.store.MintedDrops(ctx, testutil.Account(9))
	s.Require().NoError(err)
	s.Empty(empty)
}
