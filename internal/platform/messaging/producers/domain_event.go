package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mutualaid-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// DomainEventProducer publishes committed domain events from the outbox to
// the event stream. Writes are synchronous: the relay only marks an outbox
// row processed once the broker has acknowledged the message.
type DomainEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewDomainEventProducer creates the event stream producer and ensures the topic exists
func NewDomainEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DomainEventProducer, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("kafka events topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.EventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure events topic %s exists: %w", cfg.EventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.Hash{}, // Same aggregate always lands on the same partition
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &DomainEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EventsTopic,
	}, nil
}

// Publish writes one already-serialized event, keyed by aggregate ID
func (p *DomainEventProducer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish domain event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published domain event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *DomainEventProducer) Close() error {
	p.logger.Info("Closing domain event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
