// Package pgnotify relays fanout envelopes between service instances through
// PostgreSQL LISTEN/NOTIFY.
//
// Every instance notifies on the same channel and tags the payload with its
// own instance id. The listener ignores its own notifications and hands the
// others to the local hub with Deliver, so an envelope crosses the database
// at most once.
package pgnotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/fanout"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MaxPayload is the largest NOTIFY payload PostgreSQL accepts.
const MaxPayload = 7999

const queueSize = 256

// ErrPayloadTooLarge is logged when an envelope does not fit into one notification.
var ErrPayloadTooLarge = errors.New("envelope exceeds the notify payload limit")

// Notifier sends one notification.
type Notifier interface {
	Notify(ctx context.Context, channel, payload string) error
}

// Deliverer is the local side of the relay, normally a *fanout.Hub.
type Deliverer interface {
	Deliver(env fanout.Envelope) fanout.Relay
}

// GormNotifier calls pg_notify through a GORM connection.
type GormNotifier struct {
	db *gorm.DB
}

// NewGormNotifier creates a notifier on db.
func NewGormNotifier(db *gorm.DB) GormNotifier {
	return GormNotifier{db: db}
}

func (n GormNotifier) Notify(ctx context.Context, channel, payload string) error {
	return n.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", channel, payload).Error
}

type notification struct {
	Instance string `json:"instance"`
	fanout.Envelope
}

// Relay implements fanout.Relay.
type Relay struct {
	instance string
	channel  string
	notifier Notifier
	local    Deliverer
	queue    chan fanout.Envelope
	logger   *slog.Logger
}

var _ fanout.Relay = (*Relay)(nil)

// NewRelay creates a relay for the instance. Run must be started for
// forwarded envelopes to leave the process.
func NewRelay(instance, channel string, notifier Notifier, local Deliverer, logger *slog.Logger) *Relay {
	return &Relay{
		instance: instance,
		channel:  channel,
		notifier: notifier,
		local:    local,
		queue:    make(chan fanout.Envelope, queueSize),
		logger:   logger.With("component", "pgnotify", "channel", channel),
	}
}

// Forward queues env for notification. A full queue drops env.
func (r *Relay) Forward(env fanout.Envelope) {
	select {
	case r.queue <- env:
	default:
		r.logger.Warn("relay queue full, dropping envelope", "event", env.Message.Event)
	}
}

// Run sends queued envelopes until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-r.queue:
			if err := r.notify(ctx, env); err != nil {
				r.logger.ErrorContext(ctx, "failed to relay envelope", "event", env.Message.Event, "error", err)
			}
		}
	}
}

// Receive handles one notification payload. Payloads of this instance are ignored.
func (r *Relay) Receive(payload string) error {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	if n.Instance == r.instance {
		return nil
	}
	r.local.Deliver(n.Envelope)
	return nil
}

// Listen subscribes to the channel with a dedicated lib/pq connection and
// passes notifications to Receive until ctx is done.
func (r *Relay) Listen(ctx context.Context, dsn string) error {
	listener := pq.NewListener(dsn, time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("listener connection event", "event", event, "error", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(r.channel); err != nil {
		return fmt.Errorf("listen on %s: %w", r.channel, err)
	}
	r.logger.InfoContext(ctx, "relay listening", "instance", r.instance)

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; anything sent meanwhile is lost.
			if n == nil {
				continue
			}
			if err := r.Receive(n.Extra); err != nil {
				r.logger.WarnContext(ctx, "dropping notification", "error", err)
			}
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					r.logger.Warn("listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (r *Relay) notify(ctx context.Context, env fanout.Envelope) error {
	payload, err := json.Marshal(notification{Instance: r.instance, Envelope: env})
	if err != nil {
		return err
	}
	if len(payload) > MaxPayload {
		return ErrPayloadTooLarge
	}
	return r.notifier.Notify(ctx, r.channel, string(payload))
}
