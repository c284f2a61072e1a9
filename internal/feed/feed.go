// Package feed is the consumer side of the relay channel: a websocket
// client that reconnects until its context ends and delivers decoded
// messages in arrival order.
package feed

import (
	"context"
	"encoding/json"
	"log"
	"time"

	ws "nhooyr.io/websocket"

	"lectern/relay/internal/relay"
)

const reconnectDelay = 3 * time.Second

// Conn maintains the subscription to the relay server.
type Conn struct {
	url    string
	msgs   chan relay.Message
	ctx    context.Context
	cancel context.CancelFunc
}

func New(url string) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		url:    url,
		msgs:   make(chan relay.Message, 16),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Messages is the ordered stream of decoded relay messages. It is
// closed after Stop once the run loop exits.
func (c *Conn) Messages() <-chan relay.Message { return c.msgs }

func (c *Conn) Start() { go c.run() }

func (c *Conn) Stop() { c.cancel() }

func (c *Conn) run() {
	defer close(c.msgs)
	for {
		if err := c.connectAndPump(); err != nil && c.ctx.Err() == nil {
			log.Printf("[feed] connection lost: %v", err)
		}
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Conn) connectAndPump() error {
	dialCtx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	conn, _, err := ws.Dial(dialCtx, c.url, nil)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close(ws.StatusNormalClosure, "")
	log.Printf("[feed] connected url=%s", c.url)

	for {
		_, data, err := conn.Read(c.ctx)
		if err != nil {
			return err
		}
		var msg relay.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[feed] dropping malformed message: %v", err)
			continue
		}
		select {
		case c.msgs <- msg:
		case <-c.ctx.Done():
			return c.ctx.Err()
		}
	}
}
