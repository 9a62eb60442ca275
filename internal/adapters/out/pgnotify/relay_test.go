package pgnotify_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/pgnotify"
	"fulfillment/internal/fanout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	payloads []string
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, payload string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
	return nil
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.payloads...)
}

type countingRelay struct{ n int }

func (r *countingRelay) Forward(fanout.Envelope) { r.n++ }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func envelope(kind fanout.Kind) fanout.Envelope {
	return fanout.Envelope{
		Channel: fanout.Public,
		Message: fanout.Message{Event: kind, Data: json.RawMessage(`{"id":"x"}`)},
	}
}

func TestRelay_ForwardsQueuedEnvelopes(t *testing.T) {
	notifier := &recordingNotifier{}
	hub := fanout.NewHub(fanout.HubConfig{Logger: discardLogger()})
	relay := pgnotify.NewRelay("a", "fanout", notifier, hub, discardLogger())

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go relay.Run(ctx)

	relay.Forward(envelope(fanout.KindNewOrder))

	require.Eventually(t, func() bool { return len(notifier.sent()) == 1 }, time.Second, 10*time.Millisecond)
	payload := notifier.sent()[0]
	assert.Contains(t, payload, `"instance":"a"`)
	assert.Contains(t, payload, `"event":"newOrder"`)
}

func TestRelay_ReceiveDeliversForeignEnvelopesOnly(t *testing.T) {
	notifier := &recordingNotifier{}
	hub := fanout.NewHub(fanout.HubConfig{Logger: discardLogger()})
	forwarded := &countingRelay{}
	hub.AttachRelay(forwarded)
	relay := pgnotify.NewRelay("b", "fanout", notifier, hub, discardLogger())
	sub, err := hub.Subscribe(fanout.Public)
	require.NoError(t, err)

	require.NoError(t, relay.Receive(`{"instance":"b","channel":"public","message":{"event":"newOrder","data":{}}}`))
	require.NoError(t, relay.Receive(`{"instance":"a","channel":"public","message":{"event":"orderUpdated","data":{}}}`))

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, fanout.KindOrderUpdated, msg.Event)
	case <-time.After(time.Second):
		t.Fatal("foreign envelope was not delivered")
	}
	assert.Empty(t, sub.Messages())
	assert.Zero(t, forwarded.n, "received envelopes must not be relayed again")

	require.Error(t, relay.Receive("not json"))
}

func TestRelay_DropsOversizedEnvelopes(t *testing.T) {
	notifier := &recordingNotifier{}
	hub := fanout.NewHub(fanout.HubConfig{Logger: discardLogger()})
	relay := pgnotify.NewRelay("a", "fanout", notifier, hub, discardLogger())

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go relay.Run(ctx)

	big := envelope(fanout.KindNewOrder)
	big.Message.Data = json.RawMessage(`"` + strings.Repeat("x", pgnotify.MaxPayload) + `"`)
	relay.Forward(big)
	relay.Forward(envelope(fanout.KindOrderUpdated))

	require.Eventually(t, func() bool { return len(notifier.sent()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Contains(t, notifier.sent()[0], "orderUpdated")
}
