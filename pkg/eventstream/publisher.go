// Package eventstream defines the component lifecycle events the marketplace
// emits and the Publisher interface backends implement. Publishing is
// best-effort: request handling never fails because an event could not be
// delivered.
package eventstream

import "context"

// Publisher publishes component events to an event stream backend.
type Publisher interface {
	PublishComponent(ctx context.Context, event *ComponentEvent) error
	Close() error
}
