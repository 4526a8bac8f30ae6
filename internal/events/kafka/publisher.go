package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"chainfly/internal/config"
	"chainfly/internal/port"
)

// envelope is the wire format of a billing event.
type envelope struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher creates a Kafka-backed EventPublisher. Events are keyed by
// contract so that each contract's events stay ordered within a partition.
func NewPublisher(cfg *config.KafkaConfig) (port.EventPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, producerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer for %s: %w", strings.Join(cfg.Brokers, ","), err)
	}
	return NewPublisherWithProducer(producer, cfg.Topic), nil
}

// NewPublisherWithProducer wraps an existing producer.
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) port.EventPublisher {
	return &publisher{producer: producer, topic: topic}
}

func producerConfig(cfg *config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Idempotent = true
	sc.Producer.Retry.Max = 5
	sc.Producer.Retry.Backoff = 200 * time.Millisecond
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Net.MaxOpenRequests = 1
	return sc
}

func (p *publisher) Publish(ctx context.Context, event port.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(envelope{
		Type:       event.Type,
		Key:        event.Key,
		OccurredAt: event.OccurredAt.UTC(),
		Payload:    event.Payload,
	})
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
		Timestamp: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("publishing %s event: %w", event.Type, err)
	}
	return nil
}

func (p *publisher) Close() error {
	return p.producer.Close()
}
