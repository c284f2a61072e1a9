// Package hub fans admitted read requests out to every connected
// consumer over websocket. One sender (the ingest loop) writes through a
// single lock, so every consumer observes broadcasts in admission order.
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"lectern/relay/internal/relay"

	ws "nhooyr.io/websocket"
)

// Hub keeps the set of live consumer connections.
type Hub struct {
	mu           sync.Mutex
	conns        map[string]*ws.Conn
	lastActivity time.Time
}

func New() *Hub {
	return &Hub{conns: make(map[string]*ws.Conn), lastActivity: time.Now()}
}

func (h *Hub) Add(id string, c *ws.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.conns[id]; ok && old != nil {
		_ = old.Close(ws.StatusNormalClosure, "replaced")
	}
	h.conns[id] = c
	gaugeConsumers.Set(float64(len(h.conns)))
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
	gaugeConsumers.Set(float64(len(h.conns)))
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// LastActivity is the time of the most recent broadcast; the keepalive
// check uses it to decide whether the channel has gone quiet.
func (h *Hub) LastActivity() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastActivity
}

// Broadcast writes msg to every connected consumer. Consumers whose
// write fails are skipped silently; there is no retry and no buffering
// for late joiners. Holding the lock across all writes preserves order
// per consumer.
func (h *Hub) Broadcast(ctx context.Context, msg relay.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastActivity = time.Now()
	for _, c := range h.conns {
		if c == nil {
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = c.Write(wctx, ws.MessageText, data)
		cancel()
	}
	metricBroadcasts.WithLabelValues(msg.Type).Inc()
}
