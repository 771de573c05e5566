package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expensetracker/internal/events"

	"github.com/segmentio/kafka-go"
)

const (
	// Events are published one at a time from the console, so a batch never
	// fills; flush almost immediately instead of waiting the 1s default.
	batchTimeout   = 10 * time.Millisecond
	publishTimeout = 5 * time.Second
)

type Publisher struct {
	writer *kafka.Writer
}

var _ events.Publisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		return nil, errors.New("kafka: empty topic")
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: batchTimeout,
			WriteTimeout: publishTimeout,
		},
	}, nil
}

// Publish writes the event keyed by expense ID so that every change to one
// expense lands on the same partition.
func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	msg, err := messageFor(e)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func messageFor(e events.Event) (kafka.Message, error) {
	data, err := e.ToJSON()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	key := e.ExpenseID
	if key == "" {
		key = string(e.Type)
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "event_id", Value: []byte(e.ID)},
		},
	}, nil
}
