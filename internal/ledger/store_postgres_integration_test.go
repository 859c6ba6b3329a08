//go:build integration

package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"dropforge/pkg/domain"
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
	s.pg.Apply(s.T(), SchemaProceeds)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Truncate(s.T(), "proceeds")
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) TestLoadAbsentReturnsZeroedRecord() {
	b, err := s.store.Load(context.Background(), 7)
	s.Require().NoError(err)
	s.Equal(domain.DropID(7), b.DropID)
	s.Zero(b.Accrued)
	s.Zero(b.CreatorPending)
}

func (s *PostgresStoreSuite) TestSaveThenLoadRoundTrip() {
	b := &Buckets{DropID: 1}
	b.Accrue(3000, 500)
	s.Require().NoError(s.store.Save(context.Background(), b))

	got, err := s.store.Load(context.Background(), 1)
	s.Require().NoError(err)
	s.Equal(uint64(2850), got.CreatorPending)
	s.Equal(uint64(75), got.TreasuryPending)
	s.Equal(uint64(75), got.FeePending)
	s.Equal(uint64(3000), got.Accrued)
}

func (s *PostgresStoreSuite) TestUpsertReplacesExistingRow() {
	b := &Buckets{DropID: 1}
	b.Accrue(3000, 500)
	s.Require().NoError(s.store.Save(context.Background(), b))

	b.Drain(domain.BucketCreator)
	s.Require().NoError(s.store.Save(context.Background(), b))

	got, err := s.store.Load(context.Background(), 1)
	s.Require().NoError(err)
	s.Zero(got.CreatorPending)
	s.Equal(uint64(2850), got.Withdrawn)
	s.Equal(uint64(3000), got.Accrued)
}

func (s *PostgresStoreSuite) TestRowsAreIndependentPerDrop() {
	a := &Buckets{DropID: 1}
	a.Accrue(1000, 500)
	s.Require().NoError(s.store.Save(context.Background(), a))

	b := &Buckets{DropID: 2}
	b.Accrue(2000, 500)
	s.Require().NoError(s.store.Save(context.Background(), b))

	gotA, err := s.store.Load(context.Background(), 1)
	s.Require().NoError(err)
	gotB, err := s.store.Load(context.Background(), 2)
	s.Require().NoError(err)
	s.Equal(uint64(1000), gotA.Accrued)
	s.Equal(uint64(2000), gotB.Accrued)
}
