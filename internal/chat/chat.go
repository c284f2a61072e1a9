// Package chat maintains a live websocket connection to the Twitch IRC
// gateway for one channel, emitting raw chat messages as events. The
// connection reconnects with backoff and opens a short circuit after a
// burst of failures.
package chat

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"nhooyr.io/websocket"
)

const (
	EventMessage    = "message"
	EventDisconnect = "disconnect"
)

// Event is one observation from the chat feed: a user message or a
// disconnect notification.
type Event struct {
	Type string
	User string
	Text string
}

type Config struct {
	URL     string // gateway websocket URL
	Nick    string // login nick; anonymous justinfan nick when empty
	Channel string // channel to join, without the leading '#'
}

// Conn owns one chat connection lifecycle.
type Conn struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg Config

	// Events emits chat messages and disconnect notices.
	Events chan Event

	fails   []time.Time
	circuit time.Time
}

func NewConn(parent context.Context, cfg Config) *Conn {
	ctx, cancel := context.WithCancel(parent)
	if cfg.URL == "" {
		cfg.URL = "wss://irc-ws.chat.twitch.tv:443"
	}
	if cfg.Nick == "" {
		cfg.Nick = fmt.Sprintf("justinfan%d", 10000+rand.Intn(89999))
	}
	return &Conn{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		Events: make(chan Event, 32),
	}
}

func (c *Conn) Start() { go c.run() }

func (c *Conn) Close() { c.cancel() }

func (c *Conn) run() {
	defer close(c.Events)
	for {
		if err := c.connectAndPump(); err != nil {
			c.addFailure()
			c.emit(Event{Type: EventDisconnect, Text: err.Error()})
		} else {
			c.resetFailures()
		}
		if c.ctx.Err() != nil {
			return
		}
		time.Sleep(c.nextBackoff())
	}
}

func (c *Conn) connectAndPump() error {
	if time.Now().Before(c.circuit) {
		time.Sleep(500 * time.Millisecond)
		return fmt.Errorf("circuit open")
	}

	dctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()
	start := time.Now()
	ws, _, err := websocket.Dial(dctx, c.cfg.URL, nil)
	if err != nil {
		log.Printf("[chat] connect error: %v", err)
		return err
	}
	log.Printf("[chat] connected to %s in %dms", c.cfg.URL, time.Since(start).Milliseconds())
	metricConnectMS.Observe(float64(time.Since(start).Milliseconds()))
	metricReconnects.Inc()
	defer ws.Close(websocket.StatusNormalClosure, "bye")

	// Anonymous IRC handshake, then join the monitored channel.
	for _, line := range []string{
		"NICK " + c.cfg.Nick,
		"JOIN #" + strings.ToLower(c.cfg.Channel),
	} {
		if err := c.write(ws, line); err != nil {
			return err
		}
	}

	for {
		if c.ctx.Err() != nil {
			return nil
		}
		_, data, err := ws.Read(c.ctx)
		if err != nil {
			return err
		}
		for _, line := range strings.Split(string(data), "\r\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "PING") {
				_ = c.write(ws, "PONG"+strings.TrimPrefix(line, "PING"))
				continue
			}
			if user, text, ok := ParsePrivmsg(line); ok {
				metricMessages.Inc()
				c.emit(Event{Type: EventMessage, User: user, Text: text})
			}
		}
	}
}

func (c *Conn) write(ws *websocket.Conn, line string) error {
	wctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()
	return ws.Write(wctx, websocket.MessageText, []byte(line))
}

func (c *Conn) emit(e Event) {
	select {
	case c.Events <- e:
	default:
		metricEventDrops.Inc()
	}
}

func (c *Conn) addFailure() {
	c.fails = append(c.fails, time.Now())
	cutoff := time.Now().Add(-60 * time.Second)
	j := 0
	for _, t := range c.fails {
		if t.After(cutoff) {
			c.fails[j] = t
			j++
		}
	}
	c.fails = c.fails[:j]
	if len(c.fails) >= 3 {
		c.circuit = time.Now().Add(30 * time.Second)
	}
}

func (c *Conn) resetFailures() { c.fails = nil }

func (c *Conn) nextBackoff() time.Duration {
	n := len(c.fails)
	if n <= 0 {
		return time.Second
	}
	if n > 5 {
		n = 5
	}
	base := time.Duration(1<<uint(n-1)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	return base
}

// ParsePrivmsg extracts the sender and message text from an IRC PRIVMSG
// line (":nick!user@host PRIVMSG #chan :text"). Anything else reports
// ok=false.
func ParsePrivmsg(line string) (user, text string, ok bool) {
	if !strings.HasPrefix(line, ":") {
		return "", "", false
	}
	rest := line[1:]
	bang := strings.IndexByte(rest, '!')
	sp := strings.IndexByte(rest, ' ')
	if bang < 0 || sp < 0 || bang > sp {
		return "", "", false
	}
	user = rest[:bang]
	rest = rest[sp+1:]
	if !strings.HasPrefix(rest, "PRIVMSG ") {
		return "", "", false
	}
	idx := strings.Index(rest, " :")
	if idx < 0 {
		return "", "", false
	}
	return user, rest[idx+2:], true
}
