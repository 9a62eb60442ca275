// Package ws serves the fanout hub over websockets.
//
// A connection starts without subscriptions. Clients join channels with
// action frames:
//
//	{"action":"joinPublic"}
//	{"action":"joinAgent","token":"<bearer>","agentId":"<optional>"}
//
// and receive {"event":"<kind>","data":{...}} frames until they disconnect.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/fanout"

	"github.com/gorilla/websocket"
)

const (
	ActionJoinPublic = "joinPublic"
	ActionJoinAgent  = "joinAgent"

	// Control frames sent in reply to actions.
	EventJoined fanout.Kind = "joined"
	EventError  fanout.Kind = "error"
)

// Subscriber is the part of the hub the handler needs.
type Subscriber interface {
	Subscribe(channel fanout.Channel) (*fanout.Subscription, error)
}

// Action is a client frame.
type Action struct {
	Action  string `json:"action"`
	Token   string `json:"token,omitempty"`
	AgentID string `json:"agentId,omitempty"`
}

// Config tunes keepalive. Zero values fall back to defaults.
type Config struct {
	PongWait    time.Duration
	WriteWait   time.Duration
	OutBuffer   int
	CheckOrigin func(r *http.Request) bool
}

// Handler upgrades requests and bridges hub subscriptions to the socket.
type Handler struct {
	hub      Subscriber
	verifier ports.TokenVerifier
	upgrader websocket.Upgrader
	cfg      Config
	logger   *slog.Logger
}

// NewHandler creates a websocket handler.
func NewHandler(hub Subscriber, verifier ports.TokenVerifier, cfg Config, logger *slog.Logger) *Handler {
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.OutBuffer <= 0 {
		cfg.OutBuffer = fanout.DefaultBuffer
	}
	if cfg.CheckOrigin == nil {
		cfg.CheckOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub:      hub,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		cfg:    cfg,
		logger: logger.With("component", "ws"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.DebugContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:   conn,
		h:      h,
		out:        make(chan fanout.Message, h.cfg.OutBuffer),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
		joined:     make(map[fanout.Channel]*fanout.Subscription),
	}
	go c.writeLoop()
	c.readLoop(r.Context())
}

type client struct {
	conn *websocket.Conn
	h    *Handler
	out  chan fanout.Message
	// done closes when the reader stops, writerDone when the writer stops.
	done       chan struct{}
	writerDone chan struct{}

	mu     sync.Mutex
	joined map[fanout.Channel]*fanout.Subscription
	wg     sync.WaitGroup
}

func (c *client) readLoop(ctx context.Context) {
	defer c.close()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.h.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.h.cfg.PongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.h.logger.DebugContext(ctx, "websocket closed", "error", err)
			}
			return
		}

		var action Action
		if err = json.Unmarshal(frame, &action); err != nil {
			c.reply(EventError, map[string]string{"message": "malformed frame"})
			continue
		}
		c.handle(ctx, action)
	}
}

func (c *client) handle(ctx context.Context, action Action) {
	switch action.Action {
	case ActionJoinPublic:
		c.join(fanout.Public)

	case ActionJoinAgent:
		agentID, err := c.authorizeAgent(action)
		if err != nil {
			c.reply(EventError, map[string]string{"message": err.Error()})
			return
		}
		c.join(fanout.AgentChannel(agentID))

	default:
		c.h.logger.DebugContext(ctx, "unknown websocket action", "action", action.Action)
		c.reply(EventError, map[string]string{"message": "unknown action"})
	}
}

func (c *client) authorizeAgent(action Action) (kernel.UUID, error) {
	if action.Token == "" {
		return kernel.UUID{}, errors.New("token is required")
	}
	id, err := c.h.verifier.Verify(action.Token)
	if err != nil {
		return kernel.UUID{}, err
	}
	agentID, ok := identity.AgentID(id)
	if !ok {
		return kernel.UUID{}, errors.New("token does not belong to a delivery agent")
	}
	if action.AgentID != "" && action.AgentID != agentID.String() {
		return kernel.UUID{}, errors.New("token does not belong to this agent")
	}
	return agentID, nil
}

func (c *client) join(channel fanout.Channel) {
	c.mu.Lock()
	if _, ok := c.joined[channel]; ok {
		c.mu.Unlock()
		c.reply(EventJoined, map[string]fanout.Channel{"channel": channel})
		return
	}
	sub, err := c.h.hub.Subscribe(channel)
	if err != nil {
		c.mu.Unlock()
		c.reply(EventError, map[string]string{"message": err.Error()})
		return
	}
	c.joined[channel] = sub
	c.wg.Add(1)
	c.mu.Unlock()

	c.reply(EventJoined, map[string]fanout.Channel{"channel": channel})
	go c.pump(sub)
}

// pump copies hub messages to the writer. A slow socket drops messages the
// same way a full hub buffer does.
func (c *client) pump(sub *fanout.Subscription) {
	defer c.wg.Done()
	for msg := range sub.Messages() {
		select {
		case c.out <- msg:
		case <-c.done:
			return
		case <-c.writerDone:
			return
		default:
			c.h.logger.Debug("websocket client too slow, dropping message", "event", msg.Event)
		}
	}
}

func (c *client) reply(kind fanout.Kind, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	select {
	case c.out <- fanout.Message{Event: kind, Data: raw}:
	case <-c.done:
	case <-c.writerDone:
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(c.h.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		close(c.writerDone)
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.h.cfg.WriteWait))
			return
		case msg := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.h.cfg.WriteWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.h.cfg.WriteWait)); err != nil {
				return
			}
		}
	}
}

// close ends every subscription of the connection.
func (c *client) close() {
	close(c.done)
	c.mu.Lock()
	for channel, sub := range c.joined {
		sub.Close()
		delete(c.joined, channel)
	}
	c.mu.Unlock()
	c.wg.Wait()
	_ = c.conn.Close()
}
