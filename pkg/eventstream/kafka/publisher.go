// Package kafka publishes component events to a Kafka topic, keyed by
// component ID so per-component ordering survives partitioning.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	segmentio "github.com/segmentio/kafka-go"

	"github.com/lenshub/lenshub/pkg/eventstream"
)

// Publisher writes component events to Kafka.
type Publisher struct {
	writer *segmentio.Writer
}

// NewPublisher creates a Kafka publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &segmentio.Writer{
			Addr:         segmentio.TCP(brokers...),
			Topic:        topic,
			Balancer:     &segmentio.Hash{},
			RequiredAcks: segmentio.RequireOne,
		},
	}
}

// PublishComponent serializes the event and writes it keyed by component ID.
func (p *Publisher) PublishComponent(ctx context.Context, event *eventstream.ComponentEvent) error {
	if event == nil {
		return eventstream.ErrNilComponentEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling component event: %w", err)
	}

	return p.writer.WriteMessages(ctx, segmentio.Message{
		Key:   []byte(event.Component.ID),
		Value: payload,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
