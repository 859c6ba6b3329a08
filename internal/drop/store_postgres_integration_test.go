//go:build integration

package drop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"dropforge/pkg/domain"
	"dropforge/pkg/platform/sentinel"
	"dropforge/pkg/testutil"
	"dropforge/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite

	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Apply(s.T(), SchemaDrops)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Truncate(s.T(), "drops")
	s.store = NewPostgres(s.pg.DB, 0)
}

func (s *PostgresStoreSuite) create(creatorID domain.CreatorID) *Drop {
	d, err := NewDrop(creatorID, testutil.HashOf("art"), 100, 1000, 500, 2, 1000, 3, 11)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), d))
	return d
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	d := s.create(10)
	s.Equal(uint64(1), uint64(d.ID))

	got, err := s.store.FindByID(context.Background(), d.ID)
	s.Require().NoError(err)
	s.Equal(d.CreatorID, got.CreatorID)
	s.Equal(d.ContentFingerprint, got.ContentFingerprint)
	s.Equal(uint64(100), got.MaxSupply)
	s.Equal(uint64(1000), got.UnitPrice)
	s.Equal(uint32(500), got.FeeBps)
	s.Equal(uint64(2), got.PerWalletCap)
	s.Equal(uint64(11), got.ScheduledAt)
	s.Len(got.Phases, 3)
}

func (s *PostgresStoreSuite) TestPhaseArraySurvivesSave() {
	d := s.create(10)
	index, err := d.AddPhase(10, 20, true, testutil.HashOf("root"))
	s.Require().NoError(err)
	d.Phases[index].MintedCount = 4
	d.MintedSupply = 4
	s.Require().NoError(s.store.Save(context.Background(), d))

	got, err := s.store.FindByID(context.Background(), d.ID)
	s.Require().NoError(err)
	s.Equal(uint64(4), got.MintedSupply)
	p, err := got.PhaseAt(index)
	s.Require().NoError(err)
	s.Equal(uint64(10), p.StartHeight)
	s.Equal(uint64(20), p.EndHeight)
	s.True(p.AllowlistOnly)
	s.Equal(testutil.HashOf("root"), p.AllowlistRoot)
	s.Equal(uint64(4), p.MintedCount)
	s.False(got.Phases[1].Configured)
}

func (s *PostgresStoreSuite) TestCeiling() {
	limited := NewPostgres(s.pg.DB, 1)
	d, err := NewDrop(10, testutil.HashOf("a"), 10, 1, 0, 0, 1000, 3, 1)
	s.Require().NoError(err)
	s.Require().NoError(limited.Create(context.Background(), d))

	second, err := NewDrop(10, testutil.HashOf("b"), 10, 1, 0, 0, 1000, 3, 1)
	s.Require().NoError(err)
	s.ErrorIs(limited.Create(context.Background(), second), sentinel.ErrCapacity)
}

func (s *PostgresStoreSuite) TestSaveGuardsCreatorColumn() {
	d := s.create(10)
	d.CreatorID = 11
	s.ErrorIs(s.store.Save(context.Background(), d), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByCreatorOrder() {
	a := s.create(10)
	s.create(11)
	b := s.create(10)

	ids, err := s.store.ListByCreator(context.Background(), 10)
	s.Require().NoError(err)
	s.Equal([]domain.DropID{a.ID, b.ID}, ids)
}

func (s *PostgresStoreSuite) TestNotFound() {
	_, err := s.store.FindByID(context.Background(), 42)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
