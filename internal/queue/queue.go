// Package queue holds the per-consumer FIFO of pending read requests and
// the drain loop that presents them one at a time.
package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"lectern/relay/internal/relay"
)

// PresentFunc presents one item fully before returning. next is the
// upcoming item, if any, for preview display.
type PresentFunc func(ctx context.Context, item relay.ReadRequest, next *relay.ReadRequest)

// Queue is a FIFO with a single drain loop. Enqueue and the loop agree
// on one mutex-guarded playing flag, so an item can neither be stranded
// by a loop that is mid-exit nor drained by two loops at once.
type Queue struct {
	mu      sync.Mutex
	items   []relay.ReadRequest
	playing bool

	present PresentFunc
	gap     time.Duration
}

func New(present PresentFunc, gap time.Duration) *Queue {
	return &Queue{present: present, gap: gap}
}

// Enqueue appends item and starts the drain loop if it is not running.
func (q *Queue) Enqueue(ctx context.Context, item relay.ReadRequest) {
	q.mu.Lock()
	q.items = append(q.items, item)
	start := !q.playing
	if start {
		q.playing = true
	}
	q.mu.Unlock()
	if start {
		go q.drain(ctx)
	}
}

// Clear drops every pending item. The item currently presenting, if any,
// runs to completion; only queued-but-not-started items are affected.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

// Len reports the number of pending (not yet presenting) items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) drain(ctx context.Context) {
	for {
		q.mu.Lock()
		if len(q.items) == 0 || ctx.Err() != nil {
			q.playing = false
			q.mu.Unlock()
			return
		}
		head := q.items[0]
		q.items = q.items[1:]
		var next *relay.ReadRequest
		if len(q.items) > 0 {
			n := q.items[0]
			next = &n
		}
		q.mu.Unlock()

		q.presentSafely(ctx, head, next)

		select {
		case <-ctx.Done():
		case <-time.After(q.gap):
		}
	}
}

// presentSafely keeps a panicking presentation from killing the loop; a
// bad item is logged and skipped.
func (q *Queue) presentSafely(ctx context.Context, item relay.ReadRequest, next *relay.ReadRequest) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[queue] presentation panic for %q: %v", item.Reference, r)
		}
	}()
	q.present(ctx, item, next)
}
