package nop

import (
	"context"

	"github.com/lenshub/lenshub/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishComponent validates input and otherwise does nothing.
func (p *Publisher) PublishComponent(_ context.Context, event *eventstream.ComponentEvent) error {
	if event == nil {
		return eventstream.ErrNilComponentEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
