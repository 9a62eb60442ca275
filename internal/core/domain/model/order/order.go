package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("order must be created via NewOrder or RestoreOrder")

	// ErrAlreadyAssigned is returned when an agent asks for, or accepts, an order that
	// already has an assigned agent.
	ErrAlreadyAssigned = errors.New("order is already assigned")

	// ErrInvalidTransition is returned when an agent tries to move the order to a status
	// that is not strictly after the current one.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoPendingRequest is returned when the admin decides on an order whose delivery
	// request is not pending.
	ErrNoPendingRequest = errors.New("no pending delivery request")

	// ErrNotAssignedAgent is returned when somebody other than the assigned agent tries
	// to advance the delivery status.
	ErrNotAssignedAgent = errs.NewForbiddenError("only the assigned agent can update the delivery status")
)

// Order is the aggregate root of the dispatch core. It owns the delivery lifecycle and
// the negotiation between delivery agents and the admin.
//
// Invariants:
//   - an Approved delivery request names the assigned agent
//   - a None request names no agent, any other request names exactly one
//   - status only moves forward under agent authority
//
// Every successful mutation bumps the version by one relative to the version the
// aggregate was loaded with, and records a DomainEvent. Stores persist the order with
// a conditional write on ExpectedVersion.
type Order struct {
	id            kernel.UUID
	customer      Customer
	product       Product
	status        Status
	assignedAgent *kernel.UUID
	request       DeliveryRequest
	createdAt     time.Time
	updatedAt     time.Time

	loadedVersion int64
	version       int64

	events        []DomainEvent
	isConstructed bool
}

// NewOrder places a new order. The order starts Pending, unassigned and without a
// delivery request, and records an OrderCreated event.
//
// Example:
//
//	customer, _ := order.NewCustomer(nil, "Ada", "ada@example.com", "1 Main St", 2)
//	product, _ := order.NewProduct("sku-1", "Lamp", 19.9, "")
//	o, err := order.NewOrder(kernel.NewUUID(), customer, product, time.Now())
func NewOrder(id kernel.UUID, customer Customer, product Product, now time.Time) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		validateCustomer(customer),
		validateProduct(product),
	); err != nil {
		return nil, err
	}

	o := &Order{
		id:            id,
		customer:      customer,
		product:       product,
		status:        Pending,
		request:       NoDeliveryRequest(),
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		version:       1,
		isConstructed: true,
	}
	o.record(OrderCreated{baseEvent: o.base()})
	return o, nil
}

// RestoreOrder rebuilds an order from its persisted state and checks every invariant.
// It records no events.
func RestoreOrder(s Snapshot) (*Order, error) {
	customer, customerErr := NewCustomer(s.CustomerID, s.CustomerName, s.CustomerEmail, s.CustomerAddress, s.Quantity)
	product, productErr := NewProduct(s.ProductID, s.ProductTitle, s.ProductPrice, s.ProductImage)
	request, requestErr := NewDeliveryRequest(s.RequestAgent, s.RequestStatus)

	var assignedErr error
	if s.AssignedAgent != nil {
		assignedErr = s.AssignedAgent.Validate()
	}

	var versionErr error
	if s.Version < 1 {
		versionErr = errs.NewValueIsOutOfRangeError("version", s.Version, 1, "max int64")
	}

	if err := errors.Join(
		s.ID.Validate(),
		customerErr,
		productErr,
		requestErr,
		s.Status.Validate(),
		assignedErr,
		versionErr,
	); err != nil {
		return nil, err
	}

	if request.Status() == RequestApproved && !kernel.EqualPtr(s.AssignedAgent, request.Agent()) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"deliveryRequest",
			fmt.Errorf("approved request of agent %s does not match the assigned agent", request.Agent()),
		)
	}

	o := &Order{
		id:            s.ID,
		customer:      customer,
		product:       product,
		status:        s.Status,
		request:       request,
		createdAt:     s.CreatedAt.UTC(),
		updatedAt:     s.UpdatedAt.UTC(),
		loadedVersion: s.Version,
		version:       s.Version,
		isConstructed: true,
	}
	if s.AssignedAgent != nil {
		agent := *s.AssignedAgent
		o.assignedAgent = &agent
	}
	return o, nil
}

// Validate ensures the Order instance was created through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// Customer returns the customer snapshot taken when the order was placed.
func (o *Order) Customer() Customer { return o.customer }

// Product returns the product snapshot taken when the order was placed.
func (o *Order) Product() Product { return o.product }

// Status returns the current lifecycle status.
func (o *Order) Status() Status { return o.status }

// DeliveryRequest returns the latest delivery request.
func (o *Order) DeliveryRequest() DeliveryRequest { return o.request }

func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// AssignedAgent returns the assigned agent, nil while the order is unassigned.
func (o *Order) AssignedAgent() *kernel.UUID {
	if o.assignedAgent == nil {
		return nil
	}
	agent := *o.assignedAgent
	return &agent
}

// IsAssigned reports whether a delivery agent owns the order.
func (o *Order) IsAssigned() bool {
	return o.assignedAgent != nil
}

// IsAssignedTo reports whether agent owns the order.
func (o *Order) IsAssignedTo(agent kernel.UUID) bool {
	return o.assignedAgent != nil && o.assignedAgent.IsEqual(agent)
}

// Version is the version the order will have once persisted.
func (o *Order) Version() int64 { return o.version }

// ExpectedVersion is the version the order had when it was loaded. Stores must only
// write the order if the stored version still equals it.
func (o *Order) ExpectedVersion() int64 { return o.loadedVersion }

// IsChanged reports whether the order carries unpersisted mutations.
func (o *Order) IsChanged() bool { return o.version != o.loadedVersion }

// RequestAssignment records a pending delivery request from agent. A pending request
// of another agent is overwritten; the displaced agent is reported on the event.
func (o *Order) RequestAssignment(agent kernel.UUID, now time.Time) error {
	if err := agent.Validate(); err != nil {
		return err
	}
	if o.IsAssigned() {
		return ErrAlreadyAssigned
	}

	displaced := o.displacedBy(agent)
	o.request = requestFrom(agent, RequestPending)
	o.touch(now)

	o.record(AssignmentRequested{baseEvent: o.base(), AgentID: agent, Displaced: displaced})
	return nil
}

// DirectAccept lets agent take an unassigned order without admin approval.
func (o *Order) DirectAccept(agent kernel.UUID, now time.Time) error {
	if err := agent.Validate(); err != nil {
		return err
	}
	if o.IsAssigned() {
		return ErrAlreadyAssigned
	}

	displaced := o.displacedBy(agent)
	o.assign(agent)
	o.touch(now)

	o.record(OrderAccepted{baseEvent: o.base(), AgentID: agent, Displaced: displaced})
	return nil
}

// Decide applies the admin decision to the pending delivery request. Approving assigns
// the requesting agent and moves the order to Accepted, rejecting only closes the request.
func (o *Order) Decide(decision RequestStatus, now time.Time) error {
	if decision != RequestApproved && decision != RequestRejected {
		return errs.NewValueIsInvalidErrorWithCause(
			"decision",
			fmt.Errorf("%s must be Approved or Rejected", decision),
		)
	}
	if !o.request.IsPending() {
		return ErrNoPendingRequest
	}

	agent := *o.request.agent
	if decision == RequestApproved {
		o.assign(agent)
	} else {
		o.request = o.request.withStatus(RequestRejected)
	}
	o.touch(now)

	o.record(RequestDecided{baseEvent: o.base(), AgentID: agent, Decision: decision})
	return nil
}

// OverrideStatus sets any lifecycle status under admin authority, ignoring order.
func (o *Order) OverrideStatus(status Status, now time.Time) error {
	if err := status.Validate(); err != nil {
		return err
	}

	previous := o.status
	o.status = status
	o.touch(now)

	o.record(StatusOverridden{baseEvent: o.base(), Previous: previous})
	return nil
}

// AdvanceStatus moves the order forward under the authority of its assigned agent.
func (o *Order) AdvanceStatus(agent kernel.UUID, target Status, now time.Time) error {
	if !o.IsAssignedTo(agent) {
		return ErrNotAssignedAgent
	}

	next, err := o.status.Advance(target)
	if err != nil {
		return err
	}

	previous := o.status
	o.status = next
	o.touch(now)

	o.record(StatusAdvanced{baseEvent: o.base(), AgentID: agent, Previous: previous})
	return nil
}

// DomainEvents returns the events recorded since the order was loaded.
func (o *Order) DomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(o.events))
	copy(out, o.events)
	return out
}

// ClearDomainEvents drops the recorded events once they were handed to a publisher.
func (o *Order) ClearDomainEvents() {
	o.events = nil
}

func (o *Order) assign(agent kernel.UUID) {
	o.assignedAgent = &agent
	o.status = Accepted
	o.request = requestFrom(agent, RequestApproved)
}

func (o *Order) displacedBy(agent kernel.UUID) *kernel.UUID {
	if !o.request.IsPending() || o.request.agent.IsEqual(agent) {
		return nil
	}
	displaced := *o.request.agent
	return &displaced
}

func (o *Order) touch(now time.Time) {
	o.updatedAt = now.UTC()
	o.version = o.loadedVersion + 1
}

func (o *Order) record(event DomainEvent) {
	o.events = append(o.events, event)
}

func (o *Order) base() baseEvent {
	return baseEvent{order: o.Snapshot(), at: o.updatedAt}
}

func validateCustomer(c Customer) error {
	if c.name == "" || c.email == "" || c.quantity < 1 {
		return errs.NewValueIsRequiredErrorWithCause("customer", errors.New("customer must be created via NewCustomer"))
	}
	return nil
}

func validateProduct(p Product) error {
	if p.id == "" || p.title == "" {
		return errs.NewValueIsRequiredErrorWithCause("product", errors.New("product must be created via NewProduct"))
	}
	return nil
}
