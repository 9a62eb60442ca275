package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// orderMutation applies one dispatch operation to a loaded order.
type orderMutation func(o *order.Order, now time.Time) error

// orderMutator runs the load, mutate, conditional update, commit, publish cycle
// shared by every command that changes an existing order.
type orderMutator struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	now        func() time.Time
}

func newOrderMutator(uowFactory OrderUoWFactory, publisher ports.EventPublisher) orderMutator {
	return orderMutator{uowFactory: uowFactory, publisher: publisher, now: time.Now}
}

// apply mutates the order once. When the conditional update loses against a
// concurrent writer, the order is reloaded and the mutation re-evaluated to
// report the domain reason (for example order.ErrAlreadyAssigned); if the
// mutation would still succeed the version conflict itself is returned.
// Nothing is retried.
func (m orderMutator) apply(ctx context.Context, id kernel.UUID, mutate orderMutation) (order.Snapshot, error) {
	snapshot, err := m.applyOnce(ctx, id, mutate)
	if err == nil || !errors.Is(err, errs.ErrVersionIsInvalid) {
		return snapshot, err
	}
	return order.Snapshot{}, m.classify(ctx, id, mutate, err)
}

func (m orderMutator) applyOnce(ctx context.Context, id kernel.UUID, mutate orderMutation) (order.Snapshot, error) {
	uow := m.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return order.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, id)
	if err != nil {
		return order.Snapshot{}, err
	}

	if err = mutate(o, m.now()); err != nil {
		return order.Snapshot{}, err
	}

	if err = repo.Update(ctx, o); err != nil {
		return order.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return order.Snapshot{}, err
	}

	m.publisher.Publish(ctx, uow.DomainEvents()...)
	return o.Snapshot(), nil
}

func (m orderMutator) classify(ctx context.Context, id kernel.UUID, mutate orderMutation, conflict error) error {
	uow := m.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return conflict
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	fresh, err := uow.OrderRepository().Get(ctx, id)
	if err != nil {
		return err
	}
	if err = mutate(fresh, m.now()); err != nil {
		return err
	}
	return conflict
}
