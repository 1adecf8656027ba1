package shared

// BaseAggregateRoot carries the optimistic-lock version of an aggregate and
// the events it raised since it was loaded. Events are handed out once by
// PullDomainEvents, after the aggregate has been persisted.
type BaseAggregateRoot struct {
	Version int `gorm:"not null;default:1"`
	pending []DomainEvent
}

// NewBaseAggregateRoot starts a new aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{Version: 1}
}

// IncrementVersion records a successful write
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues an event for publication
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// DomainEvents returns the queued events without removing them
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.pending
}

// PullDomainEvents returns the queued events and empties the queue
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
