package memory

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// ErrNoTransaction is returned by Commit and Rollback outside of a transaction.
var ErrNoTransaction = errors.New("no active transaction")

// UnitOfWorkFactory creates units of work over a shared Store.
type UnitOfWorkFactory struct {
	store *Store
}

// NewUnitOfWorkFactory creates a factory over store.
func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

// Create produces a fresh unit of work.
func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork buffers writes between Begin and Commit and applies them atomically.
// Outside of a transaction every write is applied immediately.
type UnitOfWork struct {
	store  *Store
	active bool
	orders []orderWrite
	agents []agentRecord
	events []order.DomainEvent
}

// Begin starts buffering writes. Calling it twice is a no-op.
func (uow *UnitOfWork) Begin(_ context.Context) error {
	uow.active = true
	return nil
}

// Commit applies the buffered writes. A version conflict on any order discards
// all of them.
func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	err := uow.store.apply(uow.orders, uow.agents)
	uow.reset()
	if err != nil {
		uow.events = nil
	}
	return err
}

// Rollback drops the buffered writes and their events.
func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	uow.reset()
	uow.events = nil
	return nil
}

// OrderRepository returns the order store bound to this unit of work.
func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: uow}
}

// AgentRepository returns the agent store bound to this unit of work.
func (uow *UnitOfWork) AgentRepository() ports.AgentRepository {
	return &AgentRepository{uow: uow}
}

// DomainEvents drains the events of the orders written through this unit of work.
func (uow *UnitOfWork) DomainEvents() []order.DomainEvent {
	events := uow.events
	uow.events = nil
	return events
}

func (uow *UnitOfWork) writeOrder(w orderWrite, events []order.DomainEvent) error {
	if !uow.active {
		if err := uow.store.apply([]orderWrite{w}, nil); err != nil {
			return err
		}
		uow.events = append(uow.events, events...)
		return nil
	}

	uow.store.mu.RLock()
	err := uow.store.checkOrderWrite(w)
	uow.store.mu.RUnlock()
	if err != nil {
		return err
	}

	uow.orders = append(uow.orders, w)
	uow.events = append(uow.events, events...)
	return nil
}

func (uow *UnitOfWork) writeAgent(a agentRecord) error {
	if !uow.active {
		return uow.store.apply(nil, []agentRecord{a})
	}
	uow.agents = append(uow.agents, a)
	return nil
}

// pendingOrder returns the latest buffered state of an order, if any.
func (uow *UnitOfWork) pendingOrder(match func(order.Snapshot) bool) (order.Snapshot, bool) {
	for i := len(uow.orders) - 1; i >= 0; i-- {
		if match(uow.orders[i].snapshot) {
			return uow.orders[i].snapshot, true
		}
	}
	return order.Snapshot{}, false
}

func (uow *UnitOfWork) pendingAgent(match func(agentRecord) bool) (agentRecord, bool) {
	for i := len(uow.agents) - 1; i >= 0; i-- {
		if match(uow.agents[i]) {
			return uow.agents[i], true
		}
	}
	return agentRecord{}, false
}

func (uow *UnitOfWork) reset() {
	uow.active = false
	uow.orders = nil
	uow.agents = nil
}
