package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/lenshub/lenshub/pkg/market"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeComponentPublished is emitted when a component is approved
	// and becomes visible in the marketplace.
	EventTypeComponentPublished = "lenshub.component.published"

	// EventTypeComponentDownloaded is emitted on every download count
	// increment.
	EventTypeComponentDownloaded = "lenshub.component.downloaded"
)

// ComponentEvent is a transport-neutral event payload for a component
// lifecycle change.
type ComponentEvent struct {
	SchemaVersion int           `json:"schema_version"`
	EventType     string        `json:"event_type"`
	EventID       string        `json:"event_id"`
	EmittedAt     time.Time     `json:"emitted_at"`
	Component     ComponentMeta `json:"component"`

	// ActorID is the user that triggered the event, when known.
	ActorID string `json:"actor_id,omitempty"`
}

// ComponentMeta identifies the component the event is about.
type ComponentMeta struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	AuthorID string `json:"author_id,omitempty"`
}

// NewComponentPublished builds a published event for a component.
func NewComponentPublished(c *market.Component, actorID string) *ComponentEvent {
	return newComponentEvent(EventTypeComponentPublished, c, actorID)
}

// NewComponentDownloaded builds a downloaded event for a component.
func NewComponentDownloaded(c *market.Component, actorID string) *ComponentEvent {
	return newComponentEvent(EventTypeComponentDownloaded, c, actorID)
}

func newComponentEvent(eventType string, c *market.Component, actorID string) *ComponentEvent {
	return &ComponentEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Component: ComponentMeta{
			ID:       c.ID,
			Name:     c.Name,
			Category: c.Category,
			AuthorID: c.AuthorID,
		},
		ActorID: actorID,
	}
}
