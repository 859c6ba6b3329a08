package activity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"dropforge/internal/platform/logger"
)

type captureSink struct {
	mu       sync.Mutex
	keys     []string
	failNext int
	failAt   int // fail once when this many publishes have succeeded; -1 disables
}

func (c *captureSink) Publish(_ context.Context, key string, _ []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext > 0 {
		c.failNext--
		return errors.New("broker unreachable")
	}
	if c.failAt >= 0 && len(c.keys) == c.failAt {
		c.failAt = -1
		return errors.New("broker unreachable")
	}
	c.keys = append(c.keys, key)
	return nil
}

type WorkerSuite struct {
	suite.Suite

	store  *InMemoryStore
	sink   *captureSink
	worker *Worker
	pub    *Publisher
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	log := logger.NewNop()
	s.store = NewInMemoryStore()
	s.sink = &captureSink{failAt: -1}
	s.worker = NewWorker(s.store, s.sink, log, nil)
	s.pub = NewPublisher(s.store, log)
}

func (s *WorkerSuite) emit(n int) {
	for i := 0; i < n; i++ {
		s.Require().NoError(s.pub.Emit(context.Background(), Event{
			Action: ActionMintExecuted,
			Actor:  "wallet",
			DropID: 1,
		}))
	}
}

func (s *WorkerSuite) TestDrainPublishesAndMarks() {
	s.emit(3)

	s.Require().NoError(s.worker.drainOnce(context.Background()))
	s.Len(s.sink.keys, 3)

	pending, err := s.store.PendingCount(context.Background())
	s.Require().NoError(err)
	s.Zero(pending)

	// A second drain finds nothing new.
	s.Require().NoError(s.worker.drainOnce(context.Background()))
	s.Len(s.sink.keys, 3)
}

func (s *WorkerSuite) TestSinkFailureKeepsEventsPending() {
	s.emit(2)
	s.sink.failNext = 10

	// The sink rejection surfaces so Run can log and count it.
	s.Require().EqualError(s.worker.drainOnce(context.Background()), "broker unreachable")
	s.Empty(s.sink.keys)

	pending, err := s.store.PendingCount(context.Background())
	s.Require().NoError(err)
	s.Equal(2, pending)

	// The broker recovers; the next tick delivers the backlog.
	s.sink.failNext = 0
	s.Require().NoError(s.worker.drainOnce(context.Background()))
	s.Len(s.sink.keys, 2)
}

// TestPartialBatchMarksDeliveredPrefix pins the at-least-once contract: a
// failure mid-batch marks only the events the sink already accepted, and the
// rest stay pending for the next tick.
func (s *WorkerSuite) TestPartialBatchMarksDeliveredPrefix() {
	s.emit(3)
	s.sink.failAt = 1

	s.Require().EqualError(s.worker.drainOnce(context.Background()), "broker unreachable")
	s.Len(s.sink.keys, 1)

	pending, err := s.store.PendingCount(context.Background())
	s.Require().NoError(err)
	s.Equal(2, pending)

	s.Require().NoError(s.worker.drainOnce(context.Background()))
	s.Len(s.sink.keys, 3)
}

func (s *WorkerSuite) TestDecorationAssignsIdentity() {
	s.emit(1)
	events := s.store.All(context.Background())
	s.Require().Len(events, 1)
	s.NotZero(events[0].ID)
	s.False(events[0].EmittedAt.IsZero())
}
