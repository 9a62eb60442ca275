package ws

import (
	"encoding/json"
	"testing"
	"time"

	"fulfillment/internal/fanout"

	"github.com/stretchr/testify/assert"
)

func TestClient_ReplyReturnsAfterWriterStops(t *testing.T) {
	c := &client{
		out:        make(chan fanout.Message, 1),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	c.out <- fanout.Message{Event: EventJoined, Data: json.RawMessage(`{}`)}
	close(c.writerDone)

	returned := make(chan struct{})
	go func() {
		c.reply(EventError, map[string]string{"message": "unknown action"})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("reply blocked on a stopped writer")
	}
	assert.Len(t, c.out, 1)
}
