package present

import "sync"

// Gate is the one-time audio unlock. It starts closed and opens exactly
// once on the user gesture; it is never reset.
type Gate struct {
	mu       sync.Mutex
	unlocked bool
}

func NewGate() *Gate { return &Gate{} }

func (g *Gate) Unlock() {
	g.mu.Lock()
	g.unlocked = true
	g.mu.Unlock()
}

func (g *Gate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}
