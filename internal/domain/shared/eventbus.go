package shared

import "context"

// EventPublisher hands domain events to whoever subscribed to them. A failing
// subscriber never fails the publisher: events are notifications, not commands.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler reacts to published events. An empty EventTypes result
// subscribes the handler to every event.
type EventHandler interface {
	EventTypes() []string
	Handle(ctx context.Context, event DomainEvent) error
}
