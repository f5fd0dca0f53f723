// Package kafka publishes reconciliation outcomes to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"

	"vn.io.arda/rolesync/internal/domain"
)

// Publisher emits one record per reconciled mapping so downstream automation
// can follow membership changes without polling the run report. Records are
// keyed by target role, keeping each role's outcomes ordered within a
// partition.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects a producer to the given brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// PublishOutcome sends one event and waits for the broker to acknowledge it.
func (p *Publisher) PublishOutcome(ctx context.Context, event domain.OutcomeEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode outcome event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.CRDBRole),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce outcome event: %w", err)
	}

	log.Debug().
		Str("topic", p.topic).
		Str("role", event.CRDBRole).
		Str("run_id", event.RunID).
		Msg("outcome event published")
	return nil
}

// Close flushes buffered records and tears down the client.
func (p *Publisher) Close() {
	p.client.Close()
}
