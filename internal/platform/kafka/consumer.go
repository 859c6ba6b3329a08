package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is the transport-agnostic view handlers receive.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// Handler processes one message. Returning an error stops the consumer; the
// group rejoins on restart and redelivers from the last commit.
type Handler func(ctx context.Context, msg *Message) error

// Consumer runs a consumer-group poll loop over one topic.
type Consumer struct {
	client *kgo.Client
}

func NewConsumer(brokers, group, topic string) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return &Consumer{client: client}, nil
}

// Run polls until ctx is cancelled or the handler fails.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			return fmt.Errorf("fetch: %w", errs[0].Err)
		}
		var handleErr error
		fetches.EachRecord(func(r *kgo.Record) {
			if handleErr != nil {
				return
			}
			handleErr = handle(ctx, &Message{Topic: r.Topic, Key: r.Key, Value: r.Value})
		})
		if handleErr != nil {
			return handleErr
		}
	}
}

func (c *Consumer) Close() {
	c.client.Close()
}
