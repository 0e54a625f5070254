// Package events publishes domain events to a Kafka topic.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/events"
)

// Publisher is a Kafka implementation of events.Publisher.
//
// Records are keyed by client id so every event for a client lands on the same
// partition, in commit order.
type Publisher struct {
	client *kgo.Client
	topic  string
}

type Config struct {
	Brokers []string
	Topic   string
}

func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: empty topic")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}
	return &Publisher{client: client, topic: cfg.Topic}, nil
}

func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	rec, err := record(p.topic, e)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce %s: %w", e.Type, err)
	}
	return nil
}

func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records and closes the client.
func (p *Publisher) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}

func record(topic string, e events.Event) (*kgo.Record, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("kafka: encode event: %w", err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(int64(e.ClientID), 10)),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "event-id", Value: []byte(e.ID)},
		},
	}, nil
}
