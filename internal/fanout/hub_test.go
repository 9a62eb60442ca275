package fanout_test

import (
	"encoding/json"
	"sync"
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/fanout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	mu        sync.Mutex
	delivered int
	dropped   int
}

func (o *countingObserver) MessageDelivered(fanout.Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.delivered++
}

func (o *countingObserver) MessageDropped(fanout.Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped++
}

type recordingRelay struct {
	envelopes []fanout.Envelope
}

func (r *recordingRelay) Forward(env fanout.Envelope) {
	r.envelopes = append(r.envelopes, env)
}

func msg(kind fanout.Kind) fanout.Message {
	return fanout.Message{Event: kind, Data: json.RawMessage(`{}`)}
}

func TestHub_DeliversOnlyToSubscribersOfTheChannel(t *testing.T) {
	hub := fanout.NewHub(fanout.HubConfig{})
	defer hub.Close()

	public, err := hub.Subscribe(fanout.Public)
	require.NoError(t, err)
	agent := kernel.NewUUID()
	private, err := hub.Subscribe(fanout.AgentChannel(agent))
	require.NoError(t, err)

	hub.Publish(fanout.Public, msg(fanout.KindNewOrder))

	require.Len(t, public.Messages(), 1)
	assert.Equal(t, fanout.KindNewOrder, (<-public.Messages()).Event)
	assert.Empty(t, private.Messages())
}

func TestHub_PublishWithoutSubscribersIsNoop(t *testing.T) {
	hub := fanout.NewHub(fanout.HubConfig{})
	defer hub.Close()

	assert.NotPanics(t, func() {
		hub.Publish(fanout.AgentChannel(kernel.NewUUID()), msg(fanout.KindOrderUpdated))
	})
}

func TestHub_LateSubscriberSeesNoReplay(t *testing.T) {
	hub := fanout.NewHub(fanout.HubConfig{})
	defer hub.Close()

	hub.Publish(fanout.Public, msg(fanout.KindNewOrder))
	late, err := hub.Subscribe(fanout.Public)
	require.NoError(t, err)

	assert.Empty(t, late.Messages())
}

func TestHub_PublishAgentsReachesEveryAgentButNotPublic(t *testing.T) {
	hub := fanout.NewHub(fanout.HubConfig{})
	defer hub.Close()

	first, err := hub.Subscribe(fanout.AgentChannel(kernel.NewUUID()))
	require.NoError(t, err)
	second, err := hub.Subscribe(fanout.AgentChannel(kernel.NewUUID()))
	require.NoError(t, err)
	public, err := hub.Subscribe(fanout.Public)
	require.NoError(t, err)

	hub.PublishAgents(msg(fanout.KindNewOrder))

	assert.Len(t, first.Messages(), 1)
	assert.Len(t, second.Messages(), 1)
	assert.Empty(t, public.Messages())

	_, err = hub.Subscribe(fanout.AllAgents)
	require.Error(t, err)
}

func TestHub_FullBufferDropsWithoutBlocking(t *testing.T) {
	observer := &countingObserver{}
	hub := fanout.NewHub(fanout.HubConfig{Buffer: 2, Observer: observer})
	defer hub.Close()

	slow, err := hub.Subscribe(fanout.Public)
	require.NoError(t, err)

	for range 5 {
		hub.Publish(fanout.Public, msg(fanout.KindOrderUpdated))
	}

	assert.Len(t, slow.Messages(), 2)
	assert.Equal(t, 2, observer.delivered)
	assert.Equal(t, 3, observer.dropped)
}

func TestHub_UnsubscribeAndClose(t *testing.T) {
	hub := fanout.NewHub(fanout.HubConfig{})

	sub, err := hub.Subscribe(fanout.Public)
	require.NoError(t, err)
	other, err := hub.Subscribe(fanout.Public)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Subscribers(fanout.Public))

	sub.Close()
	sub.Close()
	assert.Equal(t, 1, hub.Subscribers(fanout.Public))
	_, open := <-sub.Messages()
	assert.False(t, open)

	hub.Close()
	_, open = <-other.Messages()
	assert.False(t, open)
	other.Close()

	_, err = hub.Subscribe(fanout.Public)
	require.ErrorIs(t, err, fanout.ErrHubClosed)
	assert.NotPanics(t, func() { hub.Publish(fanout.Public, msg(fanout.KindNewOrder)) })
}

func TestHub_RelayForwardsLocalPublicationsOnly(t *testing.T) {
	hub := fanout.NewHub(fanout.HubConfig{})
	defer hub.Close()
	relay := &recordingRelay{}
	hub.AttachRelay(relay)
	sub, err := hub.Subscribe(fanout.Public)
	require.NoError(t, err)

	hub.Publish(fanout.Public, msg(fanout.KindNewOrder))
	hub.Deliver(fanout.Envelope{Channel: fanout.Public, Message: msg(fanout.KindOrderUpdated)})

	require.Len(t, relay.envelopes, 1)
	assert.Equal(t, fanout.KindNewOrder, relay.envelopes[0].Message.Event)
	assert.Len(t, sub.Messages(), 2)
}
