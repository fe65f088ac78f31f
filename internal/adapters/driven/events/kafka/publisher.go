// Package kafka publishes ingestion events to Kafka with sarama.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// Event metadata.
const (
	DefaultTopic    = "bioorbit.ingest"
	EventIngestDone = "ingest.completed"
	headerEventType = "event-type"
	defaultClientID = "bioorbit"
)

// Config configures the producer.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Publisher sends one message per ingestion run.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ driven.EventPublisher = (*Publisher)(nil)

// NewPublisher builds an idempotent sync producer.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers is empty")
	}

	sc := sarama.NewConfig()
	sc.Version = sarama.V2_8_0_0
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 10
	sc.Producer.Retry.Backoff = 100 * time.Millisecond
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	sc.ClientID = defaultClientID
	if id := strings.TrimSpace(cfg.ClientID); id != "" {
		sc.ClientID = id
	}

	p, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}
	return NewWithProducer(p, cfg.Topic), nil
}

// NewWithProducer wraps an existing producer.
func NewWithProducer(p sarama.SyncProducer, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{producer: p, topic: topic}
}

// PublishIngest sends the report as JSON, keyed by the run's cutoff date.
func (p *Publisher) PublishIngest(ctx context.Context, report *domain.IngestReport) error {
	if report == nil {
		return fmt.Errorf("%w: report is nil", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(EventKey(report)),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerEventType), Value: []byte(EventIngestDone)},
		},
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("sending to %s: %w", p.topic, err)
	}
	return nil
}

// EventKey is the persisted watermark, or the run's start date when the
// watermark did not move.
func EventKey(report *domain.IngestReport) string {
	if report.Advanced() {
		return domain.FormatWatermark(*report.Watermark)
	}
	return domain.FormatWatermark(domain.TruncateToDate(report.StartedAt))
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
