package order_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()

	customer, err := order.NewCustomer(nil, "Ada Lovelace", "ada@example.com", "12 Analytical St", 2)
	require.NoError(t, err)
	product, err := order.NewProduct("sku-42", "Desk lamp", 19.5, "lamp.png")
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), customer, product, baseTime)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func assignedTestOrder(t *testing.T, agent kernel.UUID) *order.Order {
	t.Helper()

	o := newTestOrder(t)
	require.NoError(t, o.DirectAccept(agent, baseTime))
	o.ClearDomainEvents()
	return o
}

func TestNewCustomer(t *testing.T) {
	t.Run("should default quantity to one", func(t *testing.T) {
		c, err := order.NewCustomer(nil, "Bob", "bob@example.com", "Street 1", 0)

		require.NoError(t, err)
		assert.Equal(t, 1, c.Quantity())
		assert.Nil(t, c.ID())
	})

	t.Run("should keep customer id", func(t *testing.T) {
		id := kernel.NewUUID()

		c, err := order.NewCustomer(&id, "Bob", "bob@example.com", "Street 1", 3)

		require.NoError(t, err)
		require.NotNil(t, c.ID())
		assert.True(t, c.ID().IsEqual(id))
	})

	t.Run("should join every validation error", func(t *testing.T) {
		_, err := order.NewCustomer(nil, "", "not-an-email", " ", -2)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "customer.name")
		assert.Contains(t, err.Error(), "customer.address")
		assert.Contains(t, err.Error(), "customer.email")
		assert.Contains(t, err.Error(), "customer.quantity")
	})
}

func TestNewProduct(t *testing.T) {
	t.Run("should accept a free product", func(t *testing.T) {
		p, err := order.NewProduct("sku-1", "Sticker", 0, "")

		require.NoError(t, err)
		assert.Zero(t, p.Price())
	})

	t.Run("should reject negative price", func(t *testing.T) {
		_, err := order.NewProduct("sku-1", "Sticker", -0.01, "")

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should require id and title", func(t *testing.T) {
		_, err := order.NewProduct("", "", 1, "")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "product.id")
		assert.Contains(t, err.Error(), "product.title")
	})
}

func TestNewOrder(t *testing.T) {
	customer, _ := order.NewCustomer(nil, "Ada", "ada@example.com", "Street 1", 1)
	product, _ := order.NewProduct("sku-1", "Lamp", 10, "")

	t.Run("should create pending unassigned order", func(t *testing.T) {
		id := kernel.NewUUID()

		o, err := order.NewOrder(id, customer, product, baseTime)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, order.Pending, o.Status())
		assert.Nil(t, o.AssignedAgent())
		assert.Equal(t, order.RequestNone, o.DeliveryRequest().Status())
		assert.Equal(t, int64(1), o.Version())
		assert.Equal(t, int64(0), o.ExpectedVersion())
		assert.Equal(t, baseTime, o.CreatedAt())

		events := o.DomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(order.OrderCreated)
		require.True(t, ok)
		assert.True(t, created.Order().ID.IsEqual(id))
	})

	t.Run("should fail with invalid id", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, customer, product, baseTime)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "UUID must be created")
	})

	t.Run("should fail with zero value snapshots", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), order.Customer{}, order.Product{}, baseTime)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject zero value order", func(t *testing.T) {
		var o order.Order

		require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
	})
}

func TestOrder_RequestAssignment(t *testing.T) {
	t.Run("should record a pending request", func(t *testing.T) {
		o := newTestOrder(t)
		agent := kernel.NewUUID()

		err := o.RequestAssignment(agent, baseTime.Add(time.Minute))

		require.NoError(t, err)
		assert.True(t, o.DeliveryRequest().IsPending())
		assert.True(t, o.DeliveryRequest().Agent().IsEqual(agent))
		assert.Equal(t, order.Pending, o.Status())
		assert.Nil(t, o.AssignedAgent())
		assert.Equal(t, baseTime.Add(time.Minute), o.UpdatedAt())

		events := o.DomainEvents()
		require.Len(t, events, 1)
		requested := events[0].(order.AssignmentRequested)
		assert.True(t, requested.AgentID.IsEqual(agent))
		assert.Nil(t, requested.Displaced)
	})

	t.Run("should overwrite a pending request and report the displaced agent", func(t *testing.T) {
		o := newTestOrder(t)
		first, second := kernel.NewUUID(), kernel.NewUUID()
		require.NoError(t, o.RequestAssignment(first, baseTime))
		o.ClearDomainEvents()

		err := o.RequestAssignment(second, baseTime)

		require.NoError(t, err)
		assert.True(t, o.DeliveryRequest().Agent().IsEqual(second))
		requested := o.DomainEvents()[0].(order.AssignmentRequested)
		require.NotNil(t, requested.Displaced)
		assert.True(t, requested.Displaced.IsEqual(first))
	})

	t.Run("should not report displacement when the same agent asks again", func(t *testing.T) {
		o := newTestOrder(t)
		agent := kernel.NewUUID()
		require.NoError(t, o.RequestAssignment(agent, baseTime))
		o.ClearDomainEvents()

		require.NoError(t, o.RequestAssignment(agent, baseTime))

		assert.Nil(t, o.DomainEvents()[0].(order.AssignmentRequested).Displaced)
	})

	t.Run("should fail on an assigned order", func(t *testing.T) {
		o := assignedTestOrder(t, kernel.NewUUID())
		before := o.Snapshot()

		err := o.RequestAssignment(kernel.NewUUID(), baseTime)

		require.ErrorIs(t, err, order.ErrAlreadyAssigned)
		assert.Equal(t, before, o.Snapshot())
		assert.Empty(t, o.DomainEvents())
	})

	t.Run("should allow a new request after rejection", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.RequestAssignment(kernel.NewUUID(), baseTime))
		require.NoError(t, o.Decide(order.RequestRejected, baseTime))
		next := kernel.NewUUID()

		err := o.RequestAssignment(next, baseTime)

		require.NoError(t, err)
		assert.True(t, o.DeliveryRequest().IsPending())
		assert.True(t, o.DeliveryRequest().Agent().IsEqual(next))
	})
}

func TestOrder_DirectAccept(t *testing.T) {
	t.Run("should assign and approve in one step", func(t *testing.T) {
		o := newTestOrder(t)
		agent := kernel.NewUUID()

		err := o.DirectAccept(agent, baseTime)

		require.NoError(t, err)
		assert.Equal(t, order.Accepted, o.Status())
		assert.True(t, o.IsAssignedTo(agent))
		assert.Equal(t, order.RequestApproved, o.DeliveryRequest().Status())
		assert.True(t, o.DeliveryRequest().Agent().IsEqual(agent))
		_, ok := o.DomainEvents()[0].(order.OrderAccepted)
		assert.True(t, ok)
	})

	t.Run("should displace another agent's pending request", func(t *testing.T) {
		o := newTestOrder(t)
		requester, accepter := kernel.NewUUID(), kernel.NewUUID()
		require.NoError(t, o.RequestAssignment(requester, baseTime))
		o.ClearDomainEvents()

		require.NoError(t, o.DirectAccept(accepter, baseTime))

		accepted := o.DomainEvents()[0].(order.OrderAccepted)
		require.NotNil(t, accepted.Displaced)
		assert.True(t, accepted.Displaced.IsEqual(requester))
	})

	t.Run("should fail when already assigned", func(t *testing.T) {
		o := assignedTestOrder(t, kernel.NewUUID())

		err := o.DirectAccept(kernel.NewUUID(), baseTime)

		require.ErrorIs(t, err, order.ErrAlreadyAssigned)
	})
}

func TestOrder_Decide(t *testing.T) {
	t.Run("should assign the latest requester on approval", func(t *testing.T) {
		o := newTestOrder(t)
		a, b := kernel.NewUUID(), kernel.NewUUID()
		require.NoError(t, o.RequestAssignment(a, baseTime))
		require.NoError(t, o.RequestAssignment(b, baseTime))

		err := o.Decide(order.RequestApproved, baseTime)

		require.NoError(t, err)
		assert.True(t, o.IsAssignedTo(b))
		assert.Equal(t, order.Accepted, o.Status())
		assert.Equal(t, order.RequestApproved, o.DeliveryRequest().Status())
	})

	t.Run("should only close the request on rejection", func(t *testing.T) {
		o := newTestOrder(t)
		agent := kernel.NewUUID()
		require.NoError(t, o.RequestAssignment(agent, baseTime))
		o.ClearDomainEvents()

		err := o.Decide(order.RequestRejected, baseTime)

		require.NoError(t, err)
		assert.Nil(t, o.AssignedAgent())
		assert.Equal(t, order.Pending, o.Status())
		assert.Equal(t, order.RequestRejected, o.DeliveryRequest().Status())
		assert.True(t, o.DeliveryRequest().Agent().IsEqual(agent))
		decided := o.DomainEvents()[0].(order.RequestDecided)
		assert.Equal(t, order.RequestRejected, decided.Decision)
		assert.True(t, decided.AgentID.IsEqual(agent))
	})

	t.Run("should leave the order unchanged without pending request", func(t *testing.T) {
		o, err := order.RestoreOrder(newTestOrder(t).Snapshot())
		require.NoError(t, err)
		before := o.Snapshot()

		err = o.Decide(order.RequestApproved, baseTime.Add(time.Hour))

		require.ErrorIs(t, err, order.ErrNoPendingRequest)
		assert.Equal(t, before, o.Snapshot())
		assert.False(t, o.IsChanged())
	})

	t.Run("should reject decisions other than approve or reject", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.RequestAssignment(kernel.NewUUID(), baseTime))

		err := o.Decide(order.RequestPending, baseTime)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestOrder_AdvanceStatus(t *testing.T) {
	t.Run("should move forward for the assigned agent", func(t *testing.T) {
		agent := kernel.NewUUID()
		o := assignedTestOrder(t, agent)

		require.NoError(t, o.AdvanceStatus(agent, order.OutForDelivery, baseTime))
		require.NoError(t, o.AdvanceStatus(agent, order.Delivered, baseTime))

		assert.Equal(t, order.Delivered, o.Status())
		advanced := o.DomainEvents()[1].(order.StatusAdvanced)
		assert.Equal(t, order.OutForDelivery, advanced.Previous)
	})

	t.Run("should allow skipping forward", func(t *testing.T) {
		agent := kernel.NewUUID()
		o := assignedTestOrder(t, agent)

		require.NoError(t, o.AdvanceStatus(agent, order.Delivered, baseTime))
	})

	t.Run("should reject backward and same status moves", func(t *testing.T) {
		agent := kernel.NewUUID()
		o := assignedTestOrder(t, agent)
		require.NoError(t, o.AdvanceStatus(agent, order.OutForDelivery, baseTime))

		require.ErrorIs(t, o.AdvanceStatus(agent, order.Accepted, baseTime), order.ErrInvalidTransition)
		require.ErrorIs(t, o.AdvanceStatus(agent, order.OutForDelivery, baseTime), order.ErrInvalidTransition)
		assert.Equal(t, order.OutForDelivery, o.Status())
	})

	t.Run("should forbid other agents", func(t *testing.T) {
		o := assignedTestOrder(t, kernel.NewUUID())

		err := o.AdvanceStatus(kernel.NewUUID(), order.OutForDelivery, baseTime)

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.Equal(t, order.Accepted, o.Status())
	})

	t.Run("should forbid advancing an unassigned order", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.AdvanceStatus(kernel.NewUUID(), order.Accepted, baseTime)

		require.ErrorIs(t, err, errs.ErrForbidden)
	})
}

func TestOrder_OverrideStatus(t *testing.T) {
	t.Run("should move backward under admin authority", func(t *testing.T) {
		agent := kernel.NewUUID()
		o := assignedTestOrder(t, agent)
		require.NoError(t, o.AdvanceStatus(agent, order.Delivered, baseTime))
		o.ClearDomainEvents()

		err := o.OverrideStatus(order.Pending, baseTime)

		require.NoError(t, err)
		assert.Equal(t, order.Pending, o.Status())
		assert.True(t, o.IsAssignedTo(agent))
		overridden := o.DomainEvents()[0].(order.StatusOverridden)
		assert.Equal(t, order.Delivered, overridden.Previous)
	})

	t.Run("should reject statuses outside the vocabulary", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.OverrideStatus(order.Unknown, baseTime)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestOrder_Versioning(t *testing.T) {
	t.Run("should bump version once per load regardless of mutations", func(t *testing.T) {
		agent := kernel.NewUUID()
		restored, err := order.RestoreOrder(newTestOrder(t).Snapshot())
		require.NoError(t, err)
		require.False(t, restored.IsChanged())

		require.NoError(t, restored.DirectAccept(agent, baseTime))
		require.NoError(t, restored.AdvanceStatus(agent, order.OutForDelivery, baseTime))

		assert.Equal(t, int64(1), restored.ExpectedVersion())
		assert.Equal(t, int64(2), restored.Version())
		assert.True(t, restored.IsChanged())
	})
}

func TestRestoreOrder(t *testing.T) {
	t.Run("should restore an identical order", func(t *testing.T) {
		o := assignedTestOrder(t, kernel.NewUUID())

		restored, err := order.RestoreOrder(o.Snapshot())

		require.NoError(t, err)
		assert.Equal(t, o.Snapshot(), restored.Snapshot())
		assert.Empty(t, restored.DomainEvents())
	})

	t.Run("should reject approved request that does not match the assigned agent", func(t *testing.T) {
		s := assignedTestOrder(t, kernel.NewUUID()).Snapshot()
		other := kernel.NewUUID()
		s.AssignedAgent = &other

		_, err := order.RestoreOrder(s)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "does not match the assigned agent")
	})

	t.Run("should reject a request that names no agent", func(t *testing.T) {
		s := newTestOrder(t).Snapshot()
		s.RequestStatus = order.RequestPending

		_, err := order.RestoreOrder(s)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject a zero version", func(t *testing.T) {
		s := newTestOrder(t).Snapshot()
		s.Version = 0

		_, err := order.RestoreOrder(s)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestSnapshot_IsVisibleTo(t *testing.T) {
	me, other := kernel.NewUUID(), kernel.NewUUID()

	assert.True(t, newTestOrder(t).Snapshot().IsVisibleTo(me))
	assert.True(t, assignedTestOrder(t, me).Snapshot().IsVisibleTo(me))
	assert.False(t, assignedTestOrder(t, other).Snapshot().IsVisibleTo(me))
}
