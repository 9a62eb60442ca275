package fanout_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/fanout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	customer, err := order.NewCustomer(nil, "Ada", "ada@example.com", "1 Main St", 1)
	require.NoError(t, err)
	product, err := order.NewProduct("sku-1", "Lamp", 19.9, "")
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), customer, product, time.Now())
	require.NoError(t, err)
	return o
}

func drain(sub *fanout.Subscription) []fanout.Message {
	var out []fanout.Message
	for {
		select {
		case m := <-sub.Messages():
			out = append(out, m)
		default:
			return out
		}
	}
}

func kinds(messages []fanout.Message) []fanout.Kind {
	out := make([]fanout.Kind, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Event)
	}
	return out
}

type fixture struct {
	hub         *fanout.Hub
	broadcaster *fanout.Broadcaster
	public      *fanout.Subscription
}

func newFixture(t *testing.T) fixture {
	hub := fanout.NewHub(fanout.HubConfig{Logger: discardLogger()})
	t.Cleanup(hub.Close)
	public, err := hub.Subscribe(fanout.Public)
	require.NoError(t, err)
	return fixture{hub: hub, broadcaster: fanout.NewBroadcaster(hub, discardLogger()), public: public}
}

func (f fixture) agent(t *testing.T, id kernel.UUID) *fanout.Subscription {
	sub, err := f.hub.Subscribe(fanout.AgentChannel(id))
	require.NoError(t, err)
	return sub
}

func TestBroadcaster_NewOrderReachesEarlySubscribersOnly(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, kernel.NewUUID())
	o := newOrder(t)

	f.broadcaster.Publish(t.Context(), o.DomainEvents()...)
	late, err := f.hub.Subscribe(fanout.Public)
	require.NoError(t, err)

	published := drain(f.public)
	require.Equal(t, []fanout.Kind{fanout.KindNewOrder}, kinds(published))
	assert.Equal(t, []fanout.Kind{fanout.KindNewOrder}, kinds(drain(agent)))
	assert.Empty(t, drain(late))

	var payload fanout.OrderPayload
	require.NoError(t, json.Unmarshal(published[0].Data, &payload))
	assert.Equal(t, o.ID(), payload.ID)
	assert.Equal(t, order.Pending, payload.Status)
	assert.Equal(t, "Lamp", payload.Product.Title)
}

func TestBroadcaster_AssignmentRequestedWithDisplacement(t *testing.T) {
	f := newFixture(t)
	firstID, secondID := kernel.NewUUID(), kernel.NewUUID()
	first, second := f.agent(t, firstID), f.agent(t, secondID)
	o := newOrder(t)
	require.NoError(t, o.RequestAssignment(firstID, time.Now()))
	require.NoError(t, o.RequestAssignment(secondID, time.Now()))
	events := o.DomainEvents()

	f.broadcaster.Publish(t.Context(), events[2])

	public := drain(f.public)
	require.Equal(t, []fanout.Kind{fanout.KindDeliveryRequest}, kinds(public))
	var notice fanout.DeliveryRequestNotice
	require.NoError(t, json.Unmarshal(public[0].Data, &notice))
	assert.Equal(t, secondID, notice.AgentID)
	assert.Equal(t, order.RequestPending, notice.Status)

	assert.Equal(t, []fanout.Kind{fanout.KindRequestSent}, kinds(drain(second)))
	displaced := drain(first)
	require.Equal(t, []fanout.Kind{fanout.KindRequestDisplaced}, kinds(displaced))
	var d fanout.DisplacedNotice
	require.NoError(t, json.Unmarshal(displaced[0].Data, &d))
	assert.Equal(t, o.ID(), d.OrderID)
	assert.Equal(t, secondID, d.AgentID)
}

func TestBroadcaster_DecisionGoesToPublicAndRequester(t *testing.T) {
	f := newFixture(t)
	agentID := kernel.NewUUID()
	agent := f.agent(t, agentID)
	bystander := f.agent(t, kernel.NewUUID())
	o := newOrder(t)
	require.NoError(t, o.RequestAssignment(agentID, time.Now()))
	require.NoError(t, o.Decide(order.RequestApproved, time.Now()))
	events := o.DomainEvents()

	f.broadcaster.Publish(t.Context(), events[len(events)-1])

	expected := []fanout.Kind{fanout.KindOrderUpdated, fanout.KindDeliveryRequestResponse}
	assert.Equal(t, expected, kinds(drain(f.public)))
	toAgent := drain(agent)
	assert.Equal(t, expected, kinds(toAgent))
	assert.Empty(t, drain(bystander))

	var decision fanout.DecisionNotice
	require.NoError(t, json.Unmarshal(toAgent[1].Data, &decision))
	assert.Equal(t, order.RequestApproved, decision.Decision)
}

func TestBroadcaster_StatusChanges(t *testing.T) {
	f := newFixture(t)
	agentID := kernel.NewUUID()
	agent := f.agent(t, agentID)
	o := newOrder(t)
	o.ClearDomainEvents()

	require.NoError(t, o.OverrideStatus(order.OutForDelivery, time.Now()))
	f.broadcaster.Publish(t.Context(), o.DomainEvents()...)
	assert.Equal(t, []fanout.Kind{fanout.KindOrderUpdated}, kinds(drain(f.public)))
	assert.Empty(t, drain(agent), "unassigned override only goes public")
	o.ClearDomainEvents()

	require.NoError(t, o.DirectAccept(agentID, time.Now()))
	require.NoError(t, o.AdvanceStatus(agentID, order.Delivered, time.Now()))
	f.broadcaster.Publish(t.Context(), o.DomainEvents()...)

	assert.Equal(t, []fanout.Kind{fanout.KindOrderUpdated, fanout.KindOrderUpdated}, kinds(drain(f.public)))
	assert.Equal(t, []fanout.Kind{fanout.KindOrderUpdated, fanout.KindOrderUpdated}, kinds(drain(agent)))
}
