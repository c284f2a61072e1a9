// Package ingest runs the single event loop that serializes chat
// admissions, manual injections and the idle keepalive onto one ordered
// broadcast stream. Admission state is only ever touched from this loop.
package ingest

import (
	"context"
	"log"
	"math/rand"
	"time"

	"lectern/relay/internal/admission"
	"lectern/relay/internal/chat"
	"lectern/relay/internal/relay"
)

// Channel is the hub surface the coordinator needs.
type Channel interface {
	Broadcast(ctx context.Context, msg relay.Message)
	Count() int
	LastActivity() time.Time
}

type Config struct {
	Admission         admission.Config
	KeepaliveInterval time.Duration
	QuietGap          time.Duration
}

// Coordinator owns the ingest loop.
type Coordinator struct {
	cfg     Config
	ctrl    *admission.Controller
	ch      Channel
	inject  chan relay.Message
	fillers []relay.ReadRequest
	rng     *rand.Rand
}

func New(cfg Config, ch Channel) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		ctrl:    admission.New(cfg.Admission),
		ch:      ch,
		inject:  make(chan relay.Message, 16),
		fillers: defaultFillers,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Inject hands a manually injected message to the ingest loop so that it
// goes out through the same ordered broadcast path as admitted chat.
func (c *Coordinator) Inject(msg relay.Message) {
	c.inject <- msg
}

// Run processes events until ctx is done. Each chat event, injection and
// keepalive tick is handled to completion before the next, which is what
// lets the admission controller go without a lock.
func (c *Coordinator) Run(ctx context.Context, events <-chan chat.Event) {
	tick := time.NewTicker(c.cfg.KeepaliveInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			c.onChatEvent(ctx, ev)
		case msg := <-c.inject:
			metricInjected.WithLabelValues(msg.Type).Inc()
			c.ch.Broadcast(ctx, msg)
		case <-tick.C:
			c.keepalive(ctx, time.Now())
		}
	}
}

func (c *Coordinator) onChatEvent(ctx context.Context, ev chat.Event) {
	switch ev.Type {
	case chat.EventDisconnect:
		log.Printf("[ingest] chat source disconnected: %s", ev.Text)
	case chat.EventMessage:
		d := c.ctrl.Admit(ev.User, ev.Text, time.Now())
		if !d.Admitted {
			metricRejected.WithLabelValues(d.Reason).Inc()
			return
		}
		metricAdmitted.Inc()
		log.Printf("[ingest] admitted %q from %s", d.Request.Reference, d.Request.SourceUser)
		c.ch.Broadcast(ctx, relay.ReadMessage(d.Request))
	}
}

// keepalive broadcasts one filler request when consumers are connected
// but the channel has been quiet for longer than the configured gap.
func (c *Coordinator) keepalive(ctx context.Context, now time.Time) {
	if c.ch.Count() == 0 {
		return
	}
	if now.Sub(c.ch.LastActivity()) < c.cfg.QuietGap {
		return
	}
	req := c.fillers[c.rng.Intn(len(c.fillers))]
	metricKeepalive.Inc()
	log.Printf("[ingest] keepalive fill %q", req.Reference)
	c.ch.Broadcast(ctx, relay.ReadMessage(req))
}

// defaultFillers keeps idle consumers demonstrably alive.
var defaultFillers = []relay.ReadRequest{
	{Reference: "Psalm 23:1", SourceUser: "keepalive"},
	{Reference: "John 3:16", SourceUser: "keepalive"},
	{Reference: "Genesis 1:1", SourceUser: "keepalive"},
	{Reference: "Proverbs 3:5-6", SourceUser: "keepalive"},
	{Reference: "Philippians 4:13", SourceUser: "keepalive"},
}
