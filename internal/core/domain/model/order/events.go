package order

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// DomainEvent is a fact raised by the Order aggregate. Events are collected on
// the aggregate and published only after the unit of work has committed.
type DomainEvent interface {
	// EventName is a stable, dotted name used by integration consumers.
	EventName() string
	// Order is the state of the order right after the change.
	Order() Snapshot
	// OccurredAt is the time the change was applied.
	OccurredAt() time.Time
}

type baseEvent struct {
	order Snapshot
	at    time.Time
}

func (e baseEvent) Order() Snapshot       { return e.order }
func (e baseEvent) OccurredAt() time.Time { return e.at }

// OrderCreated is raised when an order is placed.
type OrderCreated struct {
	baseEvent
}

// EventName implements DomainEvent.
func (OrderCreated) EventName() string { return "order.created" }

// StatusOverridden is raised by the admin status override.
type StatusOverridden struct {
	baseEvent
	Previous Status
}

// EventName implements DomainEvent.
func (StatusOverridden) EventName() string { return "order.status_overridden" }

// AssignmentRequested is raised when an agent asks the admin for the order.
// Displaced is the agent whose pending request was overwritten, if any.
type AssignmentRequested struct {
	baseEvent
	AgentID   kernel.UUID
	Displaced *kernel.UUID
}

// EventName implements DomainEvent.
func (AssignmentRequested) EventName() string { return "order.assignment_requested" }

// OrderAccepted is raised when an agent self-assigns through the direct accept path.
type OrderAccepted struct {
	baseEvent
	AgentID   kernel.UUID
	Displaced *kernel.UUID
}

// EventName implements DomainEvent.
func (OrderAccepted) EventName() string { return "order.accepted" }

// RequestDecided is raised when the admin approves or rejects a pending request.
type RequestDecided struct {
	baseEvent
	AgentID  kernel.UUID
	Decision RequestStatus
}

// EventName implements DomainEvent.
func (RequestDecided) EventName() string { return "order.request_decided" }

// StatusAdvanced is raised when the assigned agent moves the order forward.
type StatusAdvanced struct {
	baseEvent
	AgentID  kernel.UUID
	Previous Status
}

// EventName implements DomainEvent.
func (StatusAdvanced) EventName() string { return "order.status_advanced" }
