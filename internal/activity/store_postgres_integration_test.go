//go:build integration

package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

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
	s.pg.Apply(s.T(), Schema)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Truncate(s.T(), "activity_outbox")
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) append(at time.Time) Event {
	event := Event{
		ID:        uuid.New(),
		Action:    ActionMintExecuted,
		Height:    15,
		Actor:     "wallet",
		DropID:    1,
		Quantity:  2,
		Amount:    2000,
		EmittedAt: at,
	}
	s.Require().NoError(s.store.Append(context.Background(), event))
	return event
}

func (s *PostgresStoreSuite) TestOutboxRoundTrip() {
	base := time.Now().UTC().Truncate(time.Millisecond)
	first := s.append(base)
	second := s.append(base.Add(time.Second))

	batch, err := s.store.UnpublishedBatch(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(batch, 2)
	// Oldest first.
	s.Equal(first.ID, batch[0].ID)
	s.Equal(second.ID, batch[1].ID)
	s.Equal(ActionMintExecuted, batch[0].Action)
	s.Equal(uint64(2000), batch[0].Amount)
}

func (s *PostgresStoreSuite) TestMarkPublishedRemovesFromBatch() {
	base := time.Now().UTC()
	first := s.append(base)
	second := s.append(base.Add(time.Second))

	s.Require().NoError(s.store.MarkPublished(context.Background(), []uuid.UUID{first.ID}))

	batch, err := s.store.UnpublishedBatch(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(batch, 1)
	s.Equal(second.ID, batch[0].ID)

	pending, err := s.store.PendingCount(context.Background())
	s.Require().NoError(err)
	s.Equal(1, pending)
}

func (s *PostgresStoreSuite) TestBatchLimit() {
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.append(base.Add(time.Duration(i) * time.Second))
	}
	batch, err := s.store.UnpublishedBatch(context.Background(), 3)
	s.Require().NoError(err)
	s.Len(batch, 3)
}

func (s *PostgresStoreSuite) TestMarkPublishedEmptyIsNoop() {
	s.Require().NoError(s.store.MarkPublished(context.Background(), nil))
}
