package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"reimbursement-hub/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// AuditPublisher implements ports.AuditSink on top of a Kafka topic. Each
// committed review decision is published as one JSON message keyed by the
// request ID, so all decisions for a request land on the same partition.
type AuditPublisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

// NewAuditPublisher creates a Kafka-backed audit sink.
func NewAuditPublisher(brokers []string, topic string, log zerolog.Logger) *AuditPublisher {
	return &AuditPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
		log: log.With().Str("component", "audit_publisher").Logger(),
	}
}

// Publish serializes the audit record and writes it to the topic.
func (p *AuditPublisher) Publish(ctx context.Context, rec *domain.AuditRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling audit record: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.RequestID.String()),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("writing audit record to kafka: %w", err)
	}

	p.log.Debug().
		Str("request_id", rec.RequestID.String()).
		Str("decision", string(rec.Decision)).
		Msg("Audit record published")

	return nil
}

// Close flushes and closes the underlying writer.
func (p *AuditPublisher) Close() error {
	return p.writer.Close()
}
