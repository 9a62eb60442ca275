// Package fanout delivers order events to connected clients in real time.
//
// The Hub keeps per-channel subscriber sets and never blocks a publisher: every
// subscriber owns a bounded buffer and an event that does not fit is dropped.
// Nothing is replayed, so a subscriber only sees events published after it
// subscribed. The Broadcaster turns committed domain events into hub messages.
package fanout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"fulfillment/internal/core/domain/model/kernel"
)

// ErrHubClosed is returned by Subscribe after Close.
var ErrHubClosed = errors.New("fanout hub is closed")

// DefaultBuffer is the per-subscriber buffer used when none is configured.
const DefaultBuffer = 64

// Channel names a subscription target.
type Channel string

const (
	// Public is the channel of storefront and admin clients.
	Public Channel = "public"

	// AllAgents addresses every agent channel at once. It cannot be subscribed to.
	AllAgents Channel = "agent:*"

	agentPrefix = "agent:"
)

// AgentChannel is the private channel of one delivery agent.
func AgentChannel(id kernel.UUID) Channel {
	return Channel(agentPrefix + id.String())
}

// IsAgent reports whether c is a private agent channel.
func (c Channel) IsAgent() bool {
	return strings.HasPrefix(string(c), agentPrefix) && c != AllAgents
}

// Message is one event as sent to clients.
type Message struct {
	Event Kind            `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Envelope is a message addressed to a channel. It is the unit relayed between
// service instances.
type Envelope struct {
	Channel Channel `json:"channel"`
	Message Message `json:"message"`
}

// Observer is notified about delivered and dropped messages.
type Observer interface {
	MessageDelivered(kind Kind)
	MessageDropped(kind Kind)
}

// Relay forwards locally published envelopes to other service instances.
// Forward must not block.
type Relay interface {
	Forward(env Envelope)
}

// HubConfig configures a Hub. Zero fields fall back to defaults.
type HubConfig struct {
	Buffer   int
	Logger   *slog.Logger
	Observer Observer
}

// Hub routes messages to channel subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[Channel]map[*Subscription]struct{}
	relay  Relay
	closed bool

	buffer   int
	logger   *slog.Logger
	observer Observer
}

// NewHub creates an open hub.
func NewHub(cfg HubConfig) *Hub {
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultBuffer
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	return &Hub{
		subs:     make(map[Channel]map[*Subscription]struct{}),
		buffer:   cfg.Buffer,
		logger:   cfg.Logger.With("component", "fanout"),
		observer: cfg.Observer,
	}
}

// AttachRelay makes every local publication also go to r. Envelopes received
// from other instances must be handed to Deliver, not Publish.
func (h *Hub) AttachRelay(r Relay) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.relay = r
}

// Subscribe registers a new subscriber of channel.
func (h *Hub) Subscribe(channel Channel) (*Subscription, error) {
	if channel == AllAgents || channel == "" {
		return nil, errors.New("fanout: cannot subscribe to " + string(channel))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}

	s := &Subscription{
		channel: channel,
		ch:      make(chan Message, h.buffer),
		hub:     h,
	}
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[*Subscription]struct{})
	}
	h.subs[channel][s] = struct{}{}
	return s, nil
}

// Publish sends msg to the subscribers of channel and to the relay.
// Without subscribers it is a no-op.
func (h *Hub) Publish(channel Channel, msg Message) {
	env := Envelope{Channel: channel, Message: msg}
	relay := h.Deliver(env)
	if relay != nil {
		relay.Forward(env)
	}
}

// PublishAgents sends msg to every agent channel.
func (h *Hub) PublishAgents(msg Message) {
	h.Publish(AllAgents, msg)
}

// Deliver sends env to local subscribers only and returns the attached relay.
func (h *Hub) Deliver(env Envelope) Relay {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil
	}

	if env.Channel == AllAgents {
		for channel, subs := range h.subs {
			if channel.IsAgent() {
				h.send(subs, env.Message)
			}
		}
	} else {
		h.send(h.subs[env.Channel], env.Message)
	}
	return h.relay
}

// Close ends every subscription. Later publications are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for channel, subs := range h.subs {
		for s := range subs {
			close(s.ch)
		}
		delete(h.subs, channel)
	}
}

// Subscribers returns the number of subscribers of channel.
func (h *Hub) Subscribers(channel Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channel])
}

// send must be called with the read lock held.
func (h *Hub) send(subs map[*Subscription]struct{}, msg Message) {
	for s := range subs {
		select {
		case s.ch <- msg:
			h.observer.MessageDelivered(msg.Event)
		default:
			h.observer.MessageDropped(msg.Event)
			h.logger.Debug("subscriber buffer full, message dropped",
				"channel", s.channel, "event", msg.Event)
		}
	}
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subs[s.channel]
	if !ok {
		return
	}
	if _, ok = subs[s]; !ok {
		return
	}
	delete(subs, s)
	close(s.ch)
	if len(subs) == 0 {
		delete(h.subs, s.channel)
	}
}

// Subscription is one subscriber of one channel.
type Subscription struct {
	channel Channel
	ch      chan Message
	hub     *Hub
}

// Channel returns the subscribed channel.
func (s *Subscription) Channel() Channel { return s.channel }

// Messages is closed when the subscription ends.
func (s *Subscription) Messages() <-chan Message { return s.ch }

// Close unsubscribes. It is safe to call more than once and after Hub.Close.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

type nopObserver struct{}

func (nopObserver) MessageDelivered(Kind) {}
func (nopObserver) MessageDropped(Kind)   {}
