package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

const defaultSource = "arb-scanner"

// messageWriter is the subset of kafka.Writer used by the publisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes emitted opportunities to Kafka
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	source string
	now    func() time.Time
	logger zerolog.Logger
}

// KafkaPublisherConfig holds Kafka publisher configuration
type KafkaPublisherConfig struct {
	Brokers      []string      // e.g., ["localhost:9092"]
	Topic        string        // e.g., "arb_opportunities"
	Source       string        // Producer name carried in every message
	WriteTimeout time.Duration // Per-write timeout, 10s when zero
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(config KafkaPublisherConfig, logger zerolog.Logger) *KafkaPublisher {
	writeTimeout := config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{}, // Same event, same partition
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: writeTimeout,
	}

	return newKafkaPublisher(writer, config, logger)
}

func newKafkaPublisher(writer messageWriter, config KafkaPublisherConfig, logger zerolog.Logger) *KafkaPublisher {
	source := config.Source
	if source == "" {
		source = defaultSource
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  config.Topic,
		source: source,
		now:    time.Now,
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// Append publishes one opportunity keyed by its event ID
func (p *KafkaPublisher) Append(ctx context.Context, opp *models.Opportunity) error {
	msg, err := p.buildMessage(opp)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish opportunity to %s: %w", p.topic, err)
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("event_id", opp.EventID).
		Str("opportunity_id", opp.ID.String()).
		Msg("published opportunity")

	return nil
}

// buildMessage wraps an opportunity in its Kafka envelope
func (p *KafkaPublisher) buildMessage(opp *models.Opportunity) (kafka.Message, error) {
	payload := models.KafkaOpportunityMessage{
		Opportunity: *opp,
		Timestamp:   p.now().UTC(),
		Source:      p.source,
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	return kafka.Message{
		Key:   []byte(opp.EventID),
		Value: value,
	}, nil
}

// Close flushes and closes the Kafka writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
